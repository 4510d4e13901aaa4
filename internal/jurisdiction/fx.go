package jurisdiction

import (
	"github.com/smallbiznis/gsttally/internal/jurisdiction/repository"
	"github.com/smallbiznis/gsttally/internal/jurisdiction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("jurisdiction.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewClassifier),
)
