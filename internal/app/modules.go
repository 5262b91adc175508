package app

import (
	"github.com/specialistvlad/pybridge/internal/registry"
	"github.com/specialistvlad/pybridge/modules/env"
	"github.com/specialistvlad/pybridge/modules/logging"
	"github.com/specialistvlad/pybridge/modules/meta"
	"github.com/specialistvlad/pybridge/modules/strcase"
)

// coreModules is the definitive list of all native modules that are
// compiled into the pybridge binary.
var coreModules = []registry.Module{
	&env.Module{},
	&logging.Module{},
	&meta.Module{},
	&strcase.Module{},
}
