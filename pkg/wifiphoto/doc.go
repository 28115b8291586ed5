// Package wifiphoto provides a client for the web server embedded in the
// "WiFi Photo Transfer" phone app.
//
// This package includes:
//   - An HTTP client driving the app's asynchronous compress-then-download
//     protocol (start job, poll readiness, fetch archive)
//   - HTML locators that resolve album names and file counts from the app's
//     web UI pages
//   - Helper functions for constructing the app's endpoints, including its
//     unencoded form bodies and cache-busting progress URLs
//
// Example usage:
//
//	client, err := wifiphoto.NewClient("http://192.168.4.104:15555",
//	    "http://192.168.4.104:15555", 30*time.Second, nil)
//
//	album, err := client.ResolveAlbum("Recents")
//	highest, err := client.HighestIndex(album)
//
//	job, err := client.StartCompression(album.ID, []int{0, 1, 2})
//	if !job.Ready {
//	    // poll client.CompressionReady(job.DownloadCode) until true
//	}
//	data, err := client.DownloadArchive(job.DownloadCode)
package wifiphoto
