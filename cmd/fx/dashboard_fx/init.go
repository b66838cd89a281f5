package dashboard_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"dossier/internal/api/controllers"
	"dossier/internal/repositories"
	"dossier/internal/services"
)

// Module wires the buyer dashboard from its read-only repository up to the controller.
var Module = fx.Options(
	fx.Provide(func(db *gorm.DB) repositories.DashboardRepository {
		return repositories.NewDashboardRepository(db)
	}),
	fx.Provide(services.NewDashboardService),
	fx.Provide(controllers.NewDashboardController),
)
