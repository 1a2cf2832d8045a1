package routes

import (
	"context"

	"github.com/commuteguardian/commuteguardian/pkg/database"
	"github.com/commuteguardian/commuteguardian/pkg/redis_client"
	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	mongoStatus := "ok"
	if err := database.MongoGlobalInstance.Client.Ping(context.Background(), nil); err != nil {
		mongoStatus = err.Error()
	}

	redisStatus := "ok"
	if err := redis_client.Client.Ping(context.Background()).Err(); err != nil {
		redisStatus = err.Error()
	}

	statusCode := fiber.StatusOK
	if mongoStatus != "ok" || redisStatus != "ok" {
		statusCode = fiber.StatusServiceUnavailable
	}

	c.SendStatus(statusCode)
	return c.JSON(fiber.Map{
		"mongo": mongoStatus,
		"redis": redisStatus,
	})
}
