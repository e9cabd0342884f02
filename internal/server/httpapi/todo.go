package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
	"github.com/go-chi/chi/v5"
)

// statusFor maps a failed envelope to an HTTP status. overrides carries the
// operation specific meanings, which matter because 302 is shared.
func statusFor(code result.Code, overrides map[result.Code]int) int {
	if s, ok := overrides[code]; ok {
		return s
	}
	switch code {
	case result.CodeBadRequest, result.CodeIDMismatch:
		return http.StatusBadRequest
	case result.CodeConcurrentUpdate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var (
	getStatuses    = map[result.Code]int{result.CodeItemNotFound: http.StatusNotFound}
	updateStatuses = map[result.Code]int{
		result.CodeItemNotFound:        http.StatusNotFound,
		result.CodeUpdateOwnerMismatch: http.StatusForbidden,
	}
	deleteStatuses = map[result.Code]int{
		result.CodeDeleteNotFound:      http.StatusNotFound,
		result.CodeDeleteOwnerMismatch: http.StatusForbidden,
	}
)

func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *handler) listMine(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	res := h.todo.ListByOwner(r.Context(), caller.UserID)
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, nil), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) listAll(w http.ResponseWriter, r *http.Request) {
	res := h.todo.ListAll(r.Context())
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, nil), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, result.Fail[*models.ToDoItem](result.CodeBadRequest, "Invalid item id."))
		return
	}

	res := h.todo.GetByID(r.Context(), id)
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, getStatuses), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var item models.ToDoItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeJSON(w, http.StatusBadRequest, result.Fail[*models.ToDoItem](result.CodeBadRequest, "Invalid request body."))
		return
	}

	caller, _ := CallerFromContext(r.Context())
	item.OwnerUserID = caller.UserID

	res := h.todo.Create(r.Context(), &item)
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, nil), res)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/todo/%d", res.Data.ID))
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, result.Fail[*models.ToDoItem](result.CodeBadRequest, "Invalid item id."))
		return
	}

	var item models.ToDoItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeJSON(w, http.StatusBadRequest, result.Fail[*models.ToDoItem](result.CodeBadRequest, "Invalid request body."))
		return
	}

	caller, _ := CallerFromContext(r.Context())
	res := h.todo.Update(r.Context(), caller.UserID, id, &item)
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, updateStatuses), res)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, result.Fail[*models.ToDoItem](result.CodeBadRequest, "Invalid item id."))
		return
	}

	caller, _ := CallerFromContext(r.Context())
	res := h.todo.DeleteByOwner(r.Context(), caller.UserID, id)
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, deleteStatuses), res)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) exportItems(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	res := h.export.Export(r.Context(), caller.UserID)
	if !res.Success {
		writeJSON(w, statusFor(res.ErrorCode, nil), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
