package webmmuxer

import "github.com/at-wat/ebml-go"

// The element structs below cover the subset of the Matroska schema a
// single-track VP8 file needs.

type header struct {
	EBMLVersion        uint64 `ebml:"EBMLVersion"`
	EBMLReadVersion    uint64 `ebml:"EBMLReadVersion"`
	EBMLMaxIDLength    uint64 `ebml:"EBMLMaxIDLength"`
	EBMLMaxSizeLength  uint64 `ebml:"EBMLMaxSizeLength"`
	DocType            string `ebml:"EBMLDocType"`
	DocTypeVersion     uint64 `ebml:"EBMLDocTypeVersion"`
	DocTypeReadVersion uint64 `ebml:"EBMLDocTypeReadVersion"`
}

// segmentID is the Matroska Segment element ID. The Segment is framed by
// hand because its clusters are encoded before its head.
var segmentID = []byte{0x18, 0x53, 0x80, 0x67}

type headerElement struct {
	Header header `ebml:"EBML"`
}

// segmentHead holds the Segment children that precede the clusters.
type segmentHead struct {
	Info   info   `ebml:"Info"`
	Tracks tracks `ebml:"Tracks"`
}

type clusterElement struct {
	Cluster cluster `ebml:"Cluster"`
}

type info struct {
	TimecodeScale uint64  `ebml:"TimecodeScale"`
	MuxingApp     string  `ebml:"MuxingApp"`
	WritingApp    string  `ebml:"WritingApp"`
	Duration      float64 `ebml:"Duration,omitempty"`
}

type tracks struct {
	TrackEntry []trackEntry `ebml:"TrackEntry"`
}

type trackEntry struct {
	TrackNumber     uint64 `ebml:"TrackNumber"`
	TrackUID        uint64 `ebml:"TrackUID"`
	CodecID         string `ebml:"CodecID"`
	TrackType       uint64 `ebml:"TrackType"`
	DefaultDuration uint64 `ebml:"DefaultDuration,omitempty"`
	Video           video  `ebml:"Video"`
}

type video struct {
	PixelWidth  uint64 `ebml:"PixelWidth"`
	PixelHeight uint64 `ebml:"PixelHeight"`
}

type cluster struct {
	Timecode    uint64       `ebml:"Timecode"`
	SimpleBlock []ebml.Block `ebml:"SimpleBlock"`
}
