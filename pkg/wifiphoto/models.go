package wifiphoto

// Album is a named collection of files on the vendor server, identified by
// the numeric id embedded in its listing link. Resolved once per run.
type Album struct {
	Name string
	Path string
	ID   int
}

// CompressStartResponse is the JSON reply to a compression request
type CompressStartResponse struct {
	DownloadCode string `json:"selid"`
	Ready        bool   `json:"ready"`
}

// CompressProgressResponse is the JSON reply to a readiness poll
type CompressProgressResponse struct {
	ReadyForDownload bool `json:"readyForDownload"`
}

// CompressionJob tracks one server-side compression task for a chunk of files
type CompressionJob struct {
	DownloadCode string
	Ready        bool
}
