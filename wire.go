//go:build wireinject

package dircat

import (
	"github.com/google/wire"
)

func InitCLI(args *Args) (*CLI, error) {
	panic(wire.Build(Wires))
}
