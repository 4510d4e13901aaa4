package compliance

import (
	"github.com/smallbiznis/gsttally/internal/compliance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("compliance.service",
	fx.Provide(
		fx.Annotate(service.NewRuleProvider, fx.ResultTags(`name:"delegate"`)),
	),
	fx.Provide(service.NewInterceptor),
)
