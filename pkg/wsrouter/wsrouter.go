package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidPayload     = errors.New("invalid payload")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

// ValidateFunc checks a decoded payload before it reaches the handler.
type ValidateFunc func(payload any) error

// ErrorHandlerFunc receives every error produced while handling a message.
type ErrorHandlerFunc func(ctx context.Context, conn *websocket.Conn, err error)

type route struct {
	decode  func(json.RawMessage) (any, error)
	handler HandlerFunc[any]
}

type WSRouter struct {
	routes       map[string]route
	middlewares  []Middleware
	validate     ValidateFunc
	errorHandler ErrorHandlerFunc
}

func New() *WSRouter {
	return &WSRouter{
		routes:       make(map[string]route),
		errorHandler: func(context.Context, *websocket.Conn, error) {},
	}
}

func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

func (r *WSRouter) SetValidator(validate ValidateFunc) {
	r.validate = validate
}

func (r *WSRouter) SetErrorHandler(errorHandler ErrorHandlerFunc) {
	r.errorHandler = errorHandler
}

// Handle registers a typed handler for messageType. Payload is decoded into T
// and validated before the middleware chain runs.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = route{
		decode: func(raw json.RawMessage) (any, error) {
			var payload T
			if len(raw) == 0 || string(raw) == "null" {
				return payload, nil
			}

			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}

			return payload, nil
		},
		handler: func(ctx context.Context, conn *websocket.Conn, payload any) error {
			typed, ok := payload.(T)
			if !ok {
				return ErrInvalidPayload
			}

			return handler(ctx, conn, typed)
		},
	}
}

func (r *WSRouter) chain(handler HandlerFunc[any]) HandlerFunc[any] {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	return handler
}

func (r *WSRouter) serveMessage(ctx context.Context, conn *websocket.Conn, msg *message) error {
	rt, ok := r.routes[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}

	payload, err := rt.decode(msg.Payload)
	if err != nil {
		return err
	}

	if r.validate != nil {
		if err := r.validate(payload); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}

	return r.chain(rt.handler)(ctx, conn, payload)
}

// ServeConn reads messages until the connection fails and returns the read error.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := r.serveMessage(msgCtx, conn, &msg); err != nil {
			r.errorHandler(msgCtx, conn, err)
		}
	}
}
