package models

// ToDoItem is a task owned by exactly one user. ID is assigned by the store;
// ID and OwnerUserID never change after creation.
type ToDoItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
	OwnerUserID string `json:"userId"`
}
