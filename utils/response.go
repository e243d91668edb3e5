package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Respond writes the standard success envelope. Every successful response is
// {success:true, data, meta:{timestamp, ...}} with an optional message.
func Respond(c *fiber.Ctx, status int, data interface{}, message string, meta fiber.Map) error {
	m := fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		m[k] = v
	}

	body := fiber.Map{
		"success": true,
		"data":    data,
		"meta":    m,
	}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// OK is Respond with a 200 status and no extra meta.
func OK(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data, "", nil)
}

// Created is Respond with a 201 status.
func Created(c *fiber.Ctx, data interface{}, message string) error {
	return Respond(c, fiber.StatusCreated, data, message, nil)
}
