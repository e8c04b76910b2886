package services

import (
	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
)

// describeOutput reduces a saved collection to what the run response reports.
func describeOutput(coll *entities.ProfileCollection, path, format, composition string) dto.OutputFile {
	out := dto.OutputFile{
		Path:        path,
		Format:      format,
		Mode:        coll.Mode().String(),
		Composition: composition,
	}
	for _, p := range coll.Profiles() {
		out.Series = append(out.Series, seriesSummary(p, false))
	}
	if m := coll.Mixture(); !m.IsZero() {
		out.Series = append(out.Series, seriesSummary(m, true))
	}
	return out
}

func seriesSummary(p entities.Profile, mixture bool) dto.SeriesSummary {
	angle, intensity := p.Peak()
	return dto.SeriesSummary{
		Label:         p.Label(),
		Points:        p.Len(),
		PeakAngle:     angle,
		PeakIntensity: intensity,
		Mixture:       mixture,
	}
}
