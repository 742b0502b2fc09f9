package profiling

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

const (
	defaultAppName        = "mentorship-api"
	defaultUploadInterval = 15 * time.Second

	// Sampling rates applied when mutex or block profiles are requested.
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

var sampleTypes = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"inuse_space":   {pyroscope.ProfileInuseSpace},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

var defaultSampleTypes = []string{"cpu", "alloc_space", "alloc_objects", "goroutines", "mutex"}

// Identity describes the running instance. It becomes the profile tag set.
type Identity struct {
	Service     string
	Namespace   string
	Version     string
	InstanceID  string
	Environment string
}

func (id Identity) tags() map[string]string {
	tags := map[string]string{
		"service_name":    id.Service,
		"namespace":       id.Namespace,
		"service_version": id.Version,
		"environment":     id.Environment,
	}
	if id.InstanceID != "" {
		tags["instance"] = id.InstanceID
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}

// InitProfiler starts continuous profiling and returns its stop function.
// With profiling disabled it returns a no-op.
func InitProfiler(cfg config.ProfilingConfig, id Identity) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	interval := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultUploadInterval
	}

	profileTypes, err := parseProfileTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.AppName)
	if appName == "" {
		appName = defaultAppName
	}

	restoreRates := enableContentionSampling(profileTypes)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      interval,
		ProfileTypes:    profileTypes,
		Tags:            id.tags(),
	})
	if err != nil {
		restoreRates()
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Int("profile_types", len(profileTypes)),
		zap.Duration("upload_interval", interval),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
		restoreRates()
	}, nil
}

// parseProfileTypes turns a comma separated list of sample names into
// pyroscope profile types, keeping the first occurrence of each.
func parseProfileTypes(value string) ([]pyroscope.ProfileType, error) {
	names := defaultSampleTypes
	if value = strings.TrimSpace(value); value != "" {
		names = strings.Split(value, ",")
	}

	var types []pyroscope.ProfileType
	seen := make(map[pyroscope.ProfileType]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		mapped, ok := sampleTypes[name]
		if !ok {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", name)
		}
		for _, t := range mapped {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}

	if len(types) == 0 {
		return parseProfileTypes("")
	}
	return types, nil
}

func enableContentionSampling(types []pyroscope.ProfileType) func() {
	var mutex, block bool
	for _, t := range types {
		switch t {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			mutex = true
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			block = true
		}
	}

	prevMutex := -1
	if mutex {
		prevMutex = runtime.SetMutexProfileFraction(mutexProfileFraction)
	}
	if block {
		runtime.SetBlockProfileRate(blockProfileRate)
	}

	return func() {
		if prevMutex >= 0 {
			runtime.SetMutexProfileFraction(prevMutex)
		}
		if block {
			runtime.SetBlockProfileRate(0)
		}
	}
}
