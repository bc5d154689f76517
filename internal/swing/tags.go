package swing

// StyleTags derives descriptive tags from a swing's metrics. Tags feed the
// corpus filter and are stored alongside results for later retrieval.
func StyleTags(m SwingMetrics) []string {
	var tags []string

	switch {
	case m.TempoRatio > 3.5:
		tags = append(tags, "slow_backswing")
	case m.TempoRatio < 2.5:
		tags = append(tags, "fast_backswing")
	default:
		tags = append(tags, "balanced_tempo")
	}

	if m.ShoulderRotationTop > 100 {
		tags = append(tags, "full_turn")
	} else if m.ShoulderRotationTop < 80 {
		tags = append(tags, "compact")
	}

	if m.XFactor > 50 {
		tags = append(tags, "high_separation")
	} else if m.XFactor < 35 {
		tags = append(tags, "connected")
	}

	if m.WeightTransfer > 0.12 {
		tags = append(tags, "aggressive_shift")
	} else if m.WeightTransfer < 0.05 {
		tags = append(tags, "stable_base")
	}

	// Club speed tags only when the launch monitor measured one.
	if speed, ok := m.Value(MetricClubSpeed); ok {
		if speed > 110 {
			tags = append(tags, "power")
		} else if speed < 95 {
			tags = append(tags, "smooth")
		}
	}

	return tags
}
