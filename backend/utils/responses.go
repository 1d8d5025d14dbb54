package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Kind    Kind        `json:"kind"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success создает успешный JSON ответ
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// OK отправляет ответ 200 OK
func OK(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusOK, data)
}

// Created отправляет ответ 201 Created
func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

// CreatedOrOK отправляет 201 для новой записи и 200 для обновленной
func CreatedOrOK(c *fiber.Ctx, created bool, data interface{}) error {
	if created {
		return Created(c, data)
	}
	return OK(c, data)
}

// NoContent отправляет ответ 204 No Content
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// PaginatedResponse структура для пагинированных ответов
type PaginatedResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Paginate создает пагинированный JSON ответ
func Paginate(c *fiber.Ctx, data interface{}, total int64, page int, pageSize int) error {
	return c.JSON(PaginatedResponse{
		Success:  true,
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// StatusFor возвращает HTTP статус для вида ошибки
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondError пишет ошибку в едином формате. Внутренние ошибки не раскрываются клиенту.
func RespondError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			appErr = &AppError{Kind: kindForStatus(fiberErr.Code), Message: fiberErr.Message}
		} else {
			appErr = Internal("Internal server error", err)
		}
	}

	status := StatusFor(appErr.Kind)
	message := appErr.Message
	if appErr.Kind == KindInternal {
		message = "Internal server error"
	}

	response := ErrorResponse{
		Success: false,
		Kind:    appErr.Kind,
		Error:   http.StatusText(status),
		Message: message,
	}
	if len(appErr.Fields) > 0 {
		response.Details = appErr.Fields
	}

	return c.Status(status).JSON(response)
}

func kindForStatus(status int) Kind {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return KindValidation
	case fiber.StatusNotFound:
		return KindNotFound
	case fiber.StatusForbidden:
		return KindForbidden
	case fiber.StatusConflict:
		return KindConflict
	case fiber.StatusUnauthorized:
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// ErrorHandler подключается в fiber.Config и приводит все ошибки к ErrorResponse
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusTooManyRequests {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{
			Success: false,
			Kind:    "rate_limited",
			Error:   http.StatusText(fiberErr.Code),
			Message: fiberErr.Message,
		})
	}
	return RespondError(c, err)
}
