package profiling

import (
	"runtime"
	"testing"

	"github.com/getmentor/mentorship-api/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []pyroscope.ProfileType
	}{
		{
			name:  "defaults",
			value: "",
			want: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
			},
		},
		{
			name:  "custom list with spaces and duplicates",
			value: "cpu, MUTEX,cpu",
			want: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
			},
		},
		{
			name:  "only separators falls back to defaults",
			value: " , ,",
			want: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProfileTypes(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,heap_dump")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heap_dump")
}

func TestIdentityTags(t *testing.T) {
	tags := Identity{Service: "mentorship-api", Namespace: "mentorship", Version: "2.0.0", Environment: "production"}.tags()

	assert.Equal(t, map[string]string{
		"service_name":    "mentorship-api",
		"namespace":       "mentorship",
		"service_version": "2.0.0",
		"environment":     "production",
	}, tags)
}

func TestEnableContentionSampling_Restores(t *testing.T) {
	before := runtime.SetMutexProfileFraction(-1)

	restore := enableContentionSampling([]pyroscope.ProfileType{pyroscope.ProfileMutexCount})
	assert.Equal(t, mutexProfileFraction, runtime.SetMutexProfileFraction(-1))

	restore()
	assert.Equal(t, before, runtime.SetMutexProfileFraction(-1))
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{Enabled: false}, Identity{Service: "svc"})
	require.NoError(t, err)
	stop()
}

func TestInitProfiler_RequiresEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: " "}, Identity{})
	assert.Error(t, err)
}
