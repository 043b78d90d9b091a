package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersAgainstSuppliedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectionsTotal.Inc()
	m.RequestsTotal.WithLabelValues("200").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() == "aouhttp_connections_total" {
			found = true
			if got := f.GetMetric()[0].GetCounter().GetValue(); got != 1 {
				t.Fatalf("connections_total = %v, want 1", got)
			}
		}
	}
	if !found {
		t.Fatal("aouhttp_connections_total not registered against the supplied registry")
	}
}

func TestTwoInstancesDoNotCollideOnSeparateRegistries(t *testing.T) {
	regA := prometheus.NewRegistry()
	regB := prometheus.NewRegistry()

	New(regA)
	New(regB)
}
