package httpapi

import "net/http"

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	res := h.users.ListAllUsers(r.Context())
	// A failed listing is reported as a bad request carrying only the description.
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, res.ErrorDescription)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}
