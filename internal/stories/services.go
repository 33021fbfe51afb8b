package stories

import (
	"github.com/zhulik/pal"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide(&Service{}),
		pal.Provide(&Cleaner{}),
		pal.Provide(&Sweeper{}),
	)
}
