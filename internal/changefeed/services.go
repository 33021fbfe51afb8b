package changefeed

import (
	"github.com/zhulik/pal"

	"openfeed/internal/core"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide[core.ChangePublisher](&Publisher{}),
		pal.Provide(&Hub{}),
	)
}
