package reconcile

import (
	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
)

// classify derives a record's format from its signals, checked in
// decreasing specificity: audio indicators (duration, narrator) beat
// ebook indicators (explicit is_ebook, file size, download availability)
// beat physical ones (dimensions, binding, weight, pagination, or an
// explicit is_ebook=false). A record with none of these yields "", and a
// canonical book whose records all yield "" is rejected downstream.
func classify(rec source.Record) string {
	if _, ok := rec.Num("duration_minutes"); ok {
		return types.FormatAudio
	}
	if rec.Str("narrator") != "" {
		return types.FormatAudio
	}

	if ebook, ok := rec.Bool("is_ebook"); ok && ebook {
		return types.FormatEBook
	}
	if _, ok := rec.Num("file_size_kb"); ok {
		return types.FormatEBook
	}
	if rec.Str("download_url") != "" {
		return types.FormatEBook
	}

	if rec.Str("dimensions") != "" || rec.Str("weight") != "" || rec.Str("pagination") != "" {
		return types.FormatPhysical
	}
	if rec.Str("binding") != "" {
		return types.FormatPhysical
	}
	if ebook, ok := rec.Bool("is_ebook"); ok && !ebook {
		return types.FormatPhysical
	}

	return ""
}
