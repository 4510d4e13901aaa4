package gst

import (
	"github.com/smallbiznis/gsttally/internal/gst/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gst.service",
	fx.Provide(service.NewLineCalculator),
	fx.Provide(service.NewService),
)
