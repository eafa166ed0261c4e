package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/transport/http/handlers"
	"github.com/hyperterse/graphgate/core/shared/errors"
)

// maxBodyBytes caps the size of a GraphQL request body
const maxBodyBytes = 1 << 20

var errNullBody = stderrors.New("body is null")

// GraphQLHandler decodes the request body and delegates to the gateway.
// POST and OPTIONS share it; only the verb differs between them.
type GraphQLHandler struct {
	*handlers.BaseHandler
	gateway interfaces.Gateway
}

// NewGraphQLHandler creates the /graphql handler
func NewGraphQLHandler(gateway interfaces.Gateway) *GraphQLHandler {
	return &GraphQLHandler{
		BaseHandler: handlers.NewBaseHandler("http:graphql"),
		gateway:     gateway,
	}
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body)
	if err == nil && body == nil {
		err = errNullBody
	}
	if err != nil {
		h.Logger().Debugf("Rejecting %s request: %v", r.Method, err)
		h.WriteError(w, errors.WrapError(errors.ErrCodeInvalidRequest, "request body must be a JSON object", err))
		return
	}

	envelope := h.gateway.Handle(r.Context(), body, r.Method, r)
	h.WriteSuccess(w, envelope)
}
