package app

import (
	"github.com/specialistvlad/missiongraph/internal/registry"
	"github.com/specialistvlad/missiongraph/modules/mission"
)

// coreModules is the definitive list of all modules that are compiled into
// the missiongraph binary.
var coreModules = []registry.Module{
	&mission.Module{},
}
