// Package datasources registers every built-in backend with vr.DefaultRegistry. Import it for side effects.
package datasources

import (
	_ "github.com/alanbriolat/video-resolver/datasource/api"
	_ "github.com/alanbriolat/video-resolver/datasource/player"
	_ "github.com/alanbriolat/video-resolver/datasource/scrape"
)
