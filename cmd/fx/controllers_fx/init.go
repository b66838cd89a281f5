package controllers_fx

import (
	"go.uber.org/fx"

	"dossier/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewProjectController),
	fx.Provide(controllers.NewWizardController),
)
