package metrics

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// WriteText writes every metric in r in the Prometheus text exposition
// format, as read by the node exporter's textfile collector. Dots and dashes
// in metric names become underscores and namespace, when set, is prepended.
// Histograms are written as summaries without quantiles plus _min, _max and
// _mean gauges.
func WriteText(w io.Writer, r *Registry, namespace string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bw := bufio.NewWriter(w)
	for _, name := range sortedKeys(r.counters) {
		pn := promName(namespace, name)
		writeHeader(bw, pn, "counter", name)
		fmt.Fprintf(bw, "%s %d\n", pn, r.counters[name].Value())
	}
	for _, name := range sortedKeys(r.gauges) {
		pn := promName(namespace, name)
		writeHeader(bw, pn, "gauge", name)
		fmt.Fprintf(bw, "%s %d\n", pn, r.gauges[name].Value())
	}
	for _, name := range sortedKeys(r.histograms) {
		snap := r.histograms[name].Snapshot()
		pn := promName(namespace, name)
		writeHeader(bw, pn, "summary", name)
		fmt.Fprintf(bw, "%s_count %d\n", pn, snap.Count)
		fmt.Fprintf(bw, "%s_sum %s\n", pn, formatFloat(snap.Sum))
		if snap.Count > 0 {
			fmt.Fprintf(bw, "%s_min %s\n", pn, formatFloat(snap.Min))
			fmt.Fprintf(bw, "%s_max %s\n", pn, formatFloat(snap.Max))
			fmt.Fprintf(bw, "%s_mean %s\n", pn, formatFloat(snap.Mean))
		}
	}
	return bw.Flush()
}

func promName(namespace, name string) string {
	sanitized := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	if namespace != "" {
		return namespace + "_" + sanitized
	}
	return sanitized
}

func writeHeader(w io.Writer, name, metricType, help string) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, metricType)
}

// formatFloat formats a float64 for Prometheus output, handling special values.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
