package campaign

import (
	"github.com/smallbiznis/charity/internal/campaign/repository"
	"github.com/smallbiznis/charity/internal/campaign/service"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
