package middleware

import (
	"log"
	"time"

	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or assigns a new one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("requestid", id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

func LoggingMiddleware(logger *log.Logger, colors bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()
		if err != nil {
			// Ошибку отдаем обработчику сразу, чтобы залогировать итоговый статус
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		method := c.Method()
		requestID, _ := c.Locals("requestid").(string)

		if colors {
			logger.Printf(
				"%s %s%s\033[0m %s %s%d\033[0m %v",
				requestID,
				utils.MethodColor(method), method,
				c.Path(),
				utils.StatusColor(status), status,
				time.Since(start),
			)
		} else {
			logger.Printf(
				"%s %s %s %s %d %v",
				requestID,
				c.IP(),
				method,
				c.Path(),
				status,
				time.Since(start),
			)
		}

		return nil
	}
}
