package memcache_fx

import (
	"go.uber.org/fx"

	mem "dossier/pkg/memcache"
)

var Module = fx.Provide(provideResetCodes)

func provideResetCodes() mem.ResetCodeStore {
	return mem.NewResetCodes()
}
