// Package authz реализует движок проверки прав доступа к объектам платформы.
//
// Решение принимается в два этапа: грубая проверка (Allow) до загрузки
// объекта и точная проверка (AllowObject) после загрузки, когда известен
// владелец. Обе функции чистые: не выполняют I/O и не меняют состояние.
// Отсутствие подходящего правила означает запрет.
package authz

import "github.com/kopstant/lms-backend/internal/models"

// Action действие над ресурсом.
type Action string

// Действия, различаемые движком.
const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// Actor описывает вызывающего: его идентификатор и набор возможностей,
// вычисленный при проверке токена. Модератором считается пользователь
// из модераторской группы либо сотрудник (is_staff).
type Actor struct {
	UserUID       string
	Email         string
	Authenticated bool
	Moderator     bool
}

// ActorFromUser строит Actor по данным пользователя.
func ActorFromUser(uid, email, role string, isStaff bool) Actor {
	return Actor{
		UserUID:       uid,
		Email:         email,
		Authenticated: uid != "",
		Moderator:     role == models.RoleModerator || isStaff,
	}
}

// Policy задаёт настраиваемую часть правил. История проекта расходится в том,
// может ли модератор создавать и удалять чужие объекты; по умолчанию — нет.
type Policy struct {
	ModeratorCanCreate bool
	ModeratorCanDelete bool
}

// Engine принимает решения о доступе по таблице правил.
type Engine struct {
	policy Policy
}

// New создаёт Engine с заданной политикой.
func New(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// читающие действия, разрешённые любому аутентифицированному пользователю
var readActions = map[Action]bool{
	ActionList:     true,
	ActionRetrieve: true,
}

var knownActions = map[Action]bool{
	ActionList:          true,
	ActionRetrieve:      true,
	ActionCreate:        true,
	ActionUpdate:        true,
	ActionPartialUpdate: true,
	ActionDestroy:       true,
}

// Allow грубая проверка до загрузки объекта. Анонимный вызывающий может
// только читать, и только публичные ресурсы (public=true). Остальные
// действия доступны аутентифицированным и уточняются в AllowObject.
func (e *Engine) Allow(actor Actor, action Action, public bool) bool {
	if !knownActions[action] {
		return false
	}
	if !actor.Authenticated {
		return public && readActions[action]
	}
	return true
}

// AllowObject точная проверка по загруженному объекту. Модераторский статус
// проверяется первым: модератор читает и редактирует любые объекты, но
// создание и удаление остаются за владельцем, если политика не говорит иного.
// Владелец может всё. Прочим доступно только чтение.
func (e *Engine) AllowObject(actor Actor, action Action, ownerUID string) bool {
	if !actor.Authenticated || !knownActions[action] {
		return false
	}
	if actor.Moderator {
		switch action {
		case ActionList, ActionRetrieve, ActionUpdate, ActionPartialUpdate:
			return true
		case ActionCreate:
			if e.policy.ModeratorCanCreate {
				return true
			}
		case ActionDestroy:
			if e.policy.ModeratorCanDelete {
				return true
			}
		}
	}
	if actor.UserUID != "" && actor.UserUID == ownerUID {
		return true
	}
	return readActions[action]
}
