package mp4muxer

const (
	nalTypeSPS = 7
	nalTypePPS = 8
	nalTypeAUD = 9
)

// extractSPSPPS returns the first SPS and PPS NAL units of an access unit.
func extractSPSPPS(au []byte) (sps, pps []byte) {
	for _, nalu := range parseAnnexB(au) {
		if len(nalu) == 0 {
			continue
		}
		switch nalu[0] & 0x1F {
		case nalTypeSPS:
			if sps == nil {
				sps = append([]byte(nil), nalu...)
			}
		case nalTypePPS:
			if pps == nil {
				pps = append([]byte(nil), nalu...)
			}
		}
	}
	return sps, pps
}

// parseAnnexB parses Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

// convertToAVCC converts Annex B format to AVCC format (length-prefixed).
// Parameter sets live in avcC and delimiters are not stored in samples.
func convertToAVCC(data []byte) []byte {
	nalus := parseAnnexB(data)
	if len(nalus) == 0 {
		return data
	}

	totalSize := 0
	for _, nalu := range nalus {
		totalSize += 4 + len(nalu)
	}

	result := make([]byte, totalSize)
	offset := 0
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch nalu[0] & 0x1F {
		case nalTypeSPS, nalTypePPS, nalTypeAUD:
			continue
		}

		length := len(nalu)
		result[offset] = byte(length >> 24)
		result[offset+1] = byte(length >> 16)
		result[offset+2] = byte(length >> 8)
		result[offset+3] = byte(length)
		offset += 4

		copy(result[offset:], nalu)
		offset += length
	}

	return result[:offset]
}
