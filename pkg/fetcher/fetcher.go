package fetcher

import (
	"fmt"
	"time"

	"wifiphoto/pkg/batch"
	"wifiphoto/pkg/config"
	"wifiphoto/pkg/logger"
	"wifiphoto/pkg/poll"
	"wifiphoto/pkg/ui"
	"wifiphoto/pkg/wifiphoto"
	"wifiphoto/pkg/workspace"
)

// Fetcher orchestrates one batch-download run: album resolution, range
// planning, the per-chunk compression protocol, and the workspace lifecycle.
type Fetcher struct {
	client *wifiphoto.Client
	config *config.Config
	logger logger.Logger

	// test seams; production runs use time.Sleep and time.Now
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a Fetcher for the server at serverURL
func New(cfg *config.Config, serverURL string) (*Fetcher, error) {
	log := logger.GetLogger()

	client, err := wifiphoto.NewClient(serverURL, cfg.Server.DownloadBaseURL, cfg.Server.Timeout.Std(), log)
	if err != nil {
		return nil, err
	}
	if cfg.Server.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Server.UserAgent)
	}

	return &Fetcher{
		client: client,
		config: cfg,
		logger: log,
		sleep:  time.Sleep,
		now:    time.Now,
	}, nil
}

// Run downloads the requested index range of the named album and returns the
// path of the final compressed archive. end <= 0 means "through the last
// file". The run is all-or-nothing: on any error the partial workspace is
// deleted and no archive is produced.
func (f *Fetcher) Run(albumName string, start, end int) (archivePath string, err error) {
	album, err := f.client.ResolveAlbum(albumName)
	if err != nil {
		return "", err
	}

	highest, err := f.client.HighestIndex(album)
	if err != nil {
		return "", err
	}

	rng, err := batch.Plan(start, end, highest)
	if err != nil {
		return "", err
	}

	f.logger.InfoWithFields("starting transfer", map[string]interface{}{
		"album":       album.Name,
		"album_id":    album.ID,
		"range_start": rng.Start,
		"range_end":   rng.End,
		"files":       rng.Count(),
	})

	ws, err := workspace.Create(f.config.Output.BaseDirectory, f.now(), f.logger)
	if err != nil {
		return "", err
	}
	// The workspace must not outlive a failed run, no matter where the
	// failure came from. Success hands ownership to Finalize instead.
	defer func() {
		if err == nil {
			return
		}
		if derr := ws.Discard(); derr != nil {
			f.logger.WithError(derr).Error("failed to clean up workspace")
		}
	}()

	seq := batch.NewSequencer(rng, f.config.Transfer.BatchSize)
	for {
		chunk, ok := seq.Next()
		if !ok {
			break
		}
		if err = f.processChunk(ws, album, chunk); err != nil {
			return "", err
		}
	}

	ui.PrintStep("Archiving directory")
	archivePath, err = ws.Finalize()
	if err != nil {
		return "", err
	}
	ui.StepDone()

	return archivePath, nil
}

// processChunk drives one chunk through the request, poll-until-ready,
// download and extract sequence. One compression job runs at a time; the
// vendor server cannot handle a second job while one is pending.
func (f *Fetcher) processChunk(ws *workspace.Workspace, album *wifiphoto.Album, chunk batch.Chunk) error {
	// The UI uses 1-based indexing while the wire selection is 0-based
	ui.PrintStep(fmt.Sprintf("Downloading images %d through %d", chunk.Start+1, chunk.End))

	job, err := f.client.StartCompression(album.ID, chunk.Selection())
	if err != nil {
		return err
	}

	if !job.Ready {
		pollCfg := &poll.Config{
			MaxAttempts: f.config.Transfer.PollAttempts,
			Interval:    f.config.Transfer.PollInterval.Std(),
			Sleep:       f.sleep,
			Logger:      f.logger,
		}
		err = poll.Do(func() (bool, error) {
			return f.client.CompressionReady(job.DownloadCode)
		}, pollCfg)
		if err != nil {
			return err
		}
	}

	data, err := f.client.DownloadArchive(job.DownloadCode)
	if err != nil {
		return err
	}
	ui.StepDone()

	ui.PrintStep("Extracting zip file")
	if err := ws.ExtractChunk(data); err != nil {
		return err
	}
	ui.StepDone()

	return nil
}
