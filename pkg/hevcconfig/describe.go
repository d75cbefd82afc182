package hevcconfig

import (
	"github.com/Eyevinn/mp4ff/hevc"
)

// Info summarizes a set of parameter sets for logging.
type Info struct {
	NALTypes []string
	// Width and Height come from the first SPS that parses; zero otherwise.
	Width  uint32
	Height uint32
}

// Describe classifies the parameter sets by NAL type and reads the picture
// size from the SPS.
func Describe(params ParameterSets) Info {
	var info Info
	for _, p := range params {
		if len(p) == 0 {
			info.NALTypes = append(info.NALTypes, "empty")
			continue
		}
		typ := hevc.GetNaluType(p[0])
		info.NALTypes = append(info.NALTypes, typ.String())

		if typ != hevc.NALU_SPS || info.Width != 0 {
			continue
		}
		sps, err := hevc.ParseSPSNALUnit(p)
		if err != nil {
			continue
		}
		info.Width, info.Height = sps.ImageSize()
	}
	return info
}
