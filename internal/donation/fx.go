package donation

import (
	"github.com/smallbiznis/charity/internal/donation/repository"
	"github.com/smallbiznis/charity/internal/donation/service"
	"github.com/smallbiznis/charity/internal/donation/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(webhook.NewService),
)
