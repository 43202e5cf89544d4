package logging

type ServiceInfo struct {
	Name     string // SERVICE_NAME or the binary default
	Version  string // injected via ldflags
	Revision string // commit the binary was built from, may be empty
}

type Environment string

const (
	EnvProd Environment = "prod"
	EnvStg  Environment = "stg"
	EnvDev  Environment = "dev"
)

// Module tags records with the subsystem that emitted them.
type Module string

const (
	ModuleAPI      Module = "api"
	ModuleFrontend Module = "frontend"
	ModuleAnnounce Module = "announce"
)
