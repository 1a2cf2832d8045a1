package api

import (
	"github.com/commuteguardian/commuteguardian/pkg/api/routes"
	"github.com/gofiber/fiber/v2"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)
	group.Get("health", routes.Health)

	routes.StopsRouter(group.Group("/stops"))
	routes.RoutesRouter(group.Group("/routes"))

	routes.EtaRouter(group.Group("/eta"))
	routes.ReliabilityRouter(group.Group("/reliability"))
	routes.RiskRouter(group.Group("/risk"))
	routes.LeaveNowRouter(group.Group("/leave-now"))

	routes.AdminRouter(group.Group("/admin"))

	return webApp.Listen(listen)
}
