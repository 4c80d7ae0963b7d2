// Package metrics records download outcomes with Prometheus collectors.
//
// bing-wallpaper is usually run from cron, so metrics are not served over
// HTTP; they are written to a file for the node exporter textfile collector:
//
//	rec := metrics.NewRecorder()
//	rec.Observe(download)
//	rec.Finish(time.Now(), err)
//	err := rec.WriteTextfile("/var/lib/node_exporter/bing_wallpaper.prom")
package metrics
