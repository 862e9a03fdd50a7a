package handler

import (
	"errors"
	"net/http"
	"strconv"

	"panda-service/internal/delivery/http/middleware"
	"panda-service/internal/domain/entity"
	"panda-service/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// internalError reports err as a 500. Records that failed to decode from storage get
// their own message so they are not mistaken for an outage.
func internalError(log *logrus.Logger, w http.ResponseWriter, r *http.Request, err error, message string) {
	entry := log.WithField("path", r.URL.Path)
	if requestID, ok := middleware.GetRequestIDFromContext(r.Context()); ok {
		entry = entry.WithField("request_id", requestID)
	}

	if errors.Is(err, entity.ErrDataIntegrity) {
		entry.Errorf("Stored record is corrupt: %+v", err)
		response.InternalServerError(w, "Stored record is corrupt")
		return
	}
	entry.Errorf("%s: %+v", message, err)
	response.InternalServerError(w, message)
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
