package metrics

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	startTime time.Time

	requestsTotal   atomic.Int64
	requestsSuccess atomic.Int64
	requestsFailed  atomic.Int64
	requestsBlocked atomic.Int64

	snapshotsBuilt  atomic.Int64
	snapshotsFailed atomic.Int64

	measurementsRecorded atomic.Int64
	vitalsRecorded       atomic.Int64

	disclosureChecks atomic.Int64
	disclosureHidden atomic.Int64

	accessRequestsCreated  atomic.Int64
	accessRequestsApproved atomic.Int64
	accessRequestsDenied   atomic.Int64

	settingsUpdates atomic.Int64
	settingsResets  atomic.Int64

	responseTimes     []time.Duration
	responseTimesLock sync.Mutex

	endpointRequests map[string]*atomic.Int64
	endpointLock     sync.Mutex
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

func New() *Metrics {
	return &Metrics{
		startTime:        time.Now(),
		responseTimes:    make([]time.Duration, 0, 1000),
		endpointRequests: make(map[string]*atomic.Int64),
	}
}

func (m *Metrics) RecordRequest(success bool) {
	m.requestsTotal.Add(1)
	if success {
		m.requestsSuccess.Add(1)
	} else {
		m.requestsFailed.Add(1)
	}
}

func (m *Metrics) RecordRequestBlocked() {
	m.requestsBlocked.Add(1)
}

func (m *Metrics) RecordSnapshot(success bool) {
	if success {
		m.snapshotsBuilt.Add(1)
	} else {
		m.snapshotsFailed.Add(1)
	}
}

func (m *Metrics) RecordMeasurement() {
	m.measurementsRecorded.Add(1)
}

func (m *Metrics) RecordVital() {
	m.vitalsRecorded.Add(1)
}

func (m *Metrics) RecordDisclosureCheck(hidden bool) {
	m.disclosureChecks.Add(1)
	if hidden {
		m.disclosureHidden.Add(1)
	}
}

func (m *Metrics) RecordAccessRequestCreated() {
	m.accessRequestsCreated.Add(1)
}

func (m *Metrics) RecordAccessRequestResolved(approved bool) {
	if approved {
		m.accessRequestsApproved.Add(1)
	} else {
		m.accessRequestsDenied.Add(1)
	}
}

func (m *Metrics) RecordSettingsUpdate() {
	m.settingsUpdates.Add(1)
}

func (m *Metrics) RecordSettingsReset() {
	m.settingsResets.Add(1)
}

func (m *Metrics) RecordEndpointRequest(endpoint string) {
	m.endpointLock.Lock()
	defer m.endpointLock.Unlock()

	if m.endpointRequests[endpoint] == nil {
		m.endpointRequests[endpoint] = &atomic.Int64{}
	}
	m.endpointRequests[endpoint].Add(1)
}

func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseTimesLock.Lock()
	defer m.responseTimesLock.Unlock()

	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
}

type Snapshot struct {
	Uptime                 time.Duration    `json:"uptime"`
	RequestsTotal          int64            `json:"requests_total"`
	RequestsSuccess        int64            `json:"requests_success"`
	RequestsFailed         int64            `json:"requests_failed"`
	RequestsBlocked        int64            `json:"requests_blocked"`
	SnapshotsBuilt         int64            `json:"snapshots_built"`
	SnapshotsFailed        int64            `json:"snapshots_failed"`
	MeasurementsRecorded   int64            `json:"measurements_recorded"`
	VitalsRecorded         int64            `json:"vitals_recorded"`
	DisclosureChecks       int64            `json:"disclosure_checks"`
	DisclosureHidden       int64            `json:"disclosure_hidden"`
	AccessRequestsCreated  int64            `json:"access_requests_created"`
	AccessRequestsApproved int64            `json:"access_requests_approved"`
	AccessRequestsDenied   int64            `json:"access_requests_denied"`
	SettingsUpdates        int64            `json:"settings_updates"`
	SettingsResets         int64            `json:"settings_resets"`
	AvgResponseTime        time.Duration    `json:"avg_response_time"`
	P99ResponseTime        time.Duration    `json:"p99_response_time"`
	EndpointRequests       map[string]int64 `json:"endpoint_requests"`
	SuccessRate            float64          `json:"success_rate"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:                 time.Since(m.startTime),
		RequestsTotal:          m.requestsTotal.Load(),
		RequestsSuccess:        m.requestsSuccess.Load(),
		RequestsFailed:         m.requestsFailed.Load(),
		RequestsBlocked:        m.requestsBlocked.Load(),
		SnapshotsBuilt:         m.snapshotsBuilt.Load(),
		SnapshotsFailed:        m.snapshotsFailed.Load(),
		MeasurementsRecorded:   m.measurementsRecorded.Load(),
		VitalsRecorded:         m.vitalsRecorded.Load(),
		DisclosureChecks:       m.disclosureChecks.Load(),
		DisclosureHidden:       m.disclosureHidden.Load(),
		AccessRequestsCreated:  m.accessRequestsCreated.Load(),
		AccessRequestsApproved: m.accessRequestsApproved.Load(),
		AccessRequestsDenied:   m.accessRequestsDenied.Load(),
		SettingsUpdates:        m.settingsUpdates.Load(),
		SettingsResets:         m.settingsResets.Load(),
		EndpointRequests:       make(map[string]int64),
	}

	if s.RequestsTotal > 0 {
		s.SuccessRate = float64(s.RequestsSuccess) / float64(s.RequestsTotal) * 100
	}

	m.responseTimesLock.Lock()
	if len(m.responseTimes) > 0 {
		var total time.Duration
		for _, rt := range m.responseTimes {
			total += rt
		}
		s.AvgResponseTime = total / time.Duration(len(m.responseTimes))

		sorted := make([]time.Duration, len(m.responseTimes))
		copy(sorted, m.responseTimes)
		for i := 0; i < len(sorted)-1; i++ {
			for j := i + 1; j < len(sorted); j++ {
				if sorted[j] < sorted[i] {
					sorted[i], sorted[j] = sorted[j], sorted[i]
				}
			}
		}
		p99Index := int(float64(len(sorted)) * 0.99)
		if p99Index >= len(sorted) {
			p99Index = len(sorted) - 1
		}
		s.P99ResponseTime = sorted[p99Index]
	}
	m.responseTimesLock.Unlock()

	m.endpointLock.Lock()
	for k, v := range m.endpointRequests {
		s.EndpointRequests[k] = v.Load()
	}
	m.endpointLock.Unlock()

	return s
}

func (m *Metrics) Prometheus() string {
	var sb strings.Builder

	writeCounter := func(name, help string, value int64) {
		sb.WriteString("# HELP " + name + " " + help + "\n")
		sb.WriteString("# TYPE " + name + " counter\n")
		sb.WriteString(name + " " + strconv.FormatInt(value, 10) + "\n\n")
	}

	sb.WriteString("# HELP vitalbase_uptime_seconds Time since server start\n")
	sb.WriteString("# TYPE vitalbase_uptime_seconds gauge\n")
	sb.WriteString("vitalbase_uptime_seconds " + strconv.FormatInt(int64(time.Since(m.startTime).Seconds()), 10) + "\n\n")

	writeCounter("vitalbase_requests_total", "Total number of HTTP requests", m.requestsTotal.Load())
	writeCounter("vitalbase_requests_success", "Successful HTTP requests", m.requestsSuccess.Load())
	writeCounter("vitalbase_requests_failed", "Failed HTTP requests", m.requestsFailed.Load())
	writeCounter("vitalbase_requests_blocked", "Rate-limited HTTP requests", m.requestsBlocked.Load())
	writeCounter("vitalbase_snapshots_built", "Health snapshots built", m.snapshotsBuilt.Load())
	writeCounter("vitalbase_snapshots_failed", "Health snapshot failures", m.snapshotsFailed.Load())
	writeCounter("vitalbase_measurements_recorded", "Body measurements recorded", m.measurementsRecorded.Load())
	writeCounter("vitalbase_vitals_recorded", "Vital sign records created", m.vitalsRecorded.Load())
	writeCounter("vitalbase_disclosure_checks", "Disclosure decisions evaluated", m.disclosureChecks.Load())
	writeCounter("vitalbase_disclosure_hidden", "Disclosure decisions that withheld data", m.disclosureHidden.Load())
	writeCounter("vitalbase_access_requests_created", "Access requests created", m.accessRequestsCreated.Load())
	writeCounter("vitalbase_access_requests_approved", "Access requests approved", m.accessRequestsApproved.Load())
	writeCounter("vitalbase_access_requests_denied", "Access requests denied", m.accessRequestsDenied.Load())
	writeCounter("vitalbase_settings_updates", "Privacy settings updates", m.settingsUpdates.Load())
	writeCounter("vitalbase_settings_resets", "Privacy settings resets", m.settingsResets.Load())

	m.endpointLock.Lock()
	if len(m.endpointRequests) > 0 {
		sb.WriteString("# HELP vitalbase_endpoint_requests Requests per endpoint\n")
		sb.WriteString("# TYPE vitalbase_endpoint_requests counter\n")
		for endpoint, v := range m.endpointRequests {
			sb.WriteString("vitalbase_endpoint_requests{endpoint=\"" + endpoint + "\"} " + strconv.FormatInt(v.Load(), 10) + "\n")
		}
		sb.WriteString("\n")
	}
	m.endpointLock.Unlock()

	return sb.String()
}
