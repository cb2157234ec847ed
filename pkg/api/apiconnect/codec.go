// Package apiconnect serves and calls the catalog.v1 services over Connect.
// Messages are encoded with a JSON codec registered under the name "json",
// so both the Connect protocol and plain HTTP clients can use them.
package apiconnect

import (
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Codec marshals the plain structs of package api.
var Codec connect.Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec)}, opts...)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec)}, opts...)
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// route dispatches on the exact procedure path.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
