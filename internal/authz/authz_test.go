package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	engine := New(Policy{})

	anonymous := Actor{}
	user := ActorFromUser("uid-1", "user@example.com", "user", false)

	tests := []struct {
		name     string
		actor    Actor
		action   Action
		public   bool
		expected bool
	}{
		{
			name:     "аноним читает публичный ресурс",
			actor:    anonymous,
			action:   ActionList,
			public:   true,
			expected: true,
		},
		{
			name:     "аноним читает непубличный ресурс",
			actor:    anonymous,
			action:   ActionRetrieve,
			public:   false,
			expected: false,
		},
		{
			name:     "аноним пишет в публичный ресурс",
			actor:    anonymous,
			action:   ActionCreate,
			public:   true,
			expected: false,
		},
		{
			name:     "пользователь создает объект",
			actor:    user,
			action:   ActionCreate,
			public:   false,
			expected: true,
		},
		{
			name:     "пользователь удаляет объект",
			actor:    user,
			action:   ActionDestroy,
			public:   false,
			expected: true,
		},
		{
			name:     "неизвестное действие запрещено",
			actor:    user,
			action:   Action("export"),
			public:   true,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.Allow(tt.actor, tt.action, tt.public))
		})
	}
}

func TestAllowObject(t *testing.T) {
	owner := ActorFromUser("owner-uid", "owner@example.com", "user", false)
	stranger := ActorFromUser("other-uid", "other@example.com", "user", false)
	moderator := ActorFromUser("mod-uid", "mod@example.com", "moderator", false)
	staff := ActorFromUser("staff-uid", "staff@example.com", "user", true)

	tests := []struct {
		name     string
		policy   Policy
		actor    Actor
		action   Action
		ownerUID string
		expected bool
	}{
		{
			name:     "владелец читает свой объект",
			actor:    owner,
			action:   ActionRetrieve,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "владелец обновляет свой объект",
			actor:    owner,
			action:   ActionUpdate,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "владелец удаляет свой объект",
			actor:    owner,
			action:   ActionDestroy,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "чужой пользователь читает объект",
			actor:    stranger,
			action:   ActionRetrieve,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "чужой пользователь обновляет объект",
			actor:    stranger,
			action:   ActionUpdate,
			ownerUID: "owner-uid",
			expected: false,
		},
		{
			name:     "чужой пользователь удаляет объект",
			actor:    stranger,
			action:   ActionDestroy,
			ownerUID: "owner-uid",
			expected: false,
		},
		{
			name:     "модератор читает чужой объект",
			actor:    moderator,
			action:   ActionRetrieve,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "модератор обновляет чужой объект",
			actor:    moderator,
			action:   ActionUpdate,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "модератор удаляет чужой объект по умолчанию",
			actor:    moderator,
			action:   ActionDestroy,
			ownerUID: "owner-uid",
			expected: false,
		},
		{
			name:     "модератор удаляет чужой объект при разрешающей политике",
			policy:   Policy{ModeratorCanDelete: true},
			actor:    moderator,
			action:   ActionDestroy,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "модератор создает при разрешающей политике",
			policy:   Policy{ModeratorCanCreate: true},
			actor:    moderator,
			action:   ActionCreate,
			ownerUID: "",
			expected: true,
		},
		{
			name:     "сотрудник получает модераторские права",
			actor:    staff,
			action:   ActionUpdate,
			ownerUID: "owner-uid",
			expected: true,
		},
		{
			name:     "аноним не проходит точную проверку",
			actor:    Actor{},
			action:   ActionRetrieve,
			ownerUID: "owner-uid",
			expected: false,
		},
		{
			name:     "неизвестное действие запрещено даже владельцу",
			actor:    owner,
			action:   Action("export"),
			ownerUID: "owner-uid",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(tt.policy)
			assert.Equal(t, tt.expected, engine.AllowObject(tt.actor, tt.action, tt.ownerUID))
		})
	}
}

func TestActorFromUser(t *testing.T) {
	t.Run("модератор по роли", func(t *testing.T) {
		actor := ActorFromUser("uid", "a@b.com", "moderator", false)
		assert.True(t, actor.Moderator)
		assert.True(t, actor.Authenticated)
	})

	t.Run("модератор по флагу сотрудника", func(t *testing.T) {
		actor := ActorFromUser("uid", "a@b.com", "user", true)
		assert.True(t, actor.Moderator)
	})

	t.Run("пустой uid означает анонима", func(t *testing.T) {
		actor := ActorFromUser("", "", "", false)
		assert.False(t, actor.Authenticated)
	})
}
