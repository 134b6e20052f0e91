package rt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel     = "result"
	kindLabel       = "kind"
	resolutionLabel = "resolution"
)

var (
	raysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_rays_total",
		Help: "The number of rays shot, by outcome.",
	}, []string{
		resultLabel,
	})

	solidShotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_solid_shots_total",
		Help: "The number of primitive intersections performed.",
	}, []string{
		kindLabel,
	})

	degeneraciesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_degeneracies_total",
		Help: "Primitive intersections discarded as numerically degenerate.",
	}, []string{
		kindLabel,
	})

	prepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_prep_failures_total",
		Help: "Solids dropped because they could not be prepared.",
	}, []string{
		kindLabel,
	})

	overlapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_overlaps_total",
		Help: "Region overlaps reported, by resolution.",
	}, []string{
		resolutionLabel,
	})
)

func instrumentRay(result string) {
	raysTotal.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}

func instrumentSolidShot(kind string) {
	solidShotsTotal.With(prometheus.Labels{
		kindLabel: kind,
	}).Inc()
}

func instrumentDegeneracy(kind string) {
	degeneraciesTotal.With(prometheus.Labels{
		kindLabel: kind,
	}).Inc()
}

func instrumentPrepFailure(kind string) {
	prepFailuresTotal.With(prometheus.Labels{
		kindLabel: kind,
	}).Inc()
}

func instrumentOverlap(res Resolution) {
	overlapsTotal.With(prometheus.Labels{
		resolutionLabel: res.String(),
	}).Inc()
}
