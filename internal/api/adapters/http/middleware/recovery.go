package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"neurolearn/internal/api/adapters/http/response"
	"neurolearn/pkg/logger"
)

const (
	LogServerPanic      = "server panic"
	LogPanicResponseErr = "failed to send error response after panic"
)

// NewRecoveryMiddleware создает новое промежуточное ПО для восстановления после паники.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		requestCtx := RequestContext(ctx)

		defer func() {
			if r := recover(); r != nil {
				log := logger.Log(requestCtx)
				log.Error(requestCtx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)

				if sendErr := response.Detail(ctx, fiber.StatusInternalServerError, response.DetailInternalError); sendErr != nil {
					log.Error(requestCtx, LogPanicResponseErr, zap.Error(sendErr))
				}
				err = nil
			}
		}()

		return ctx.Next()
	}
}
