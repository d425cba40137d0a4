package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/clubhouse/internal/api/apierr"
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apierr.WriteError(w, r, err)
}

// pathID parses a positive integer path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.NewInvalidRequestError(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
