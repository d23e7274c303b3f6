package item

import "sort"

// subjectTable maps file extensions to archive.org subject tags. Extensions
// not listed here contribute no subject.
var subjectTable = map[string]string{
	// images
	"jpg": "images", "jpeg": "images", "png": "images", "gif": "images",
	"bmp": "images", "tif": "images", "tiff": "images", "heic": "images",
	"heif": "images", "webp": "images", "svg": "images",
	// documents
	"pdf": "documents", "doc": "documents", "docx": "documents",
	"odt": "documents", "rtf": "documents", "txt": "documents",
	"md": "documents", "epub": "documents",
	// spreadsheets
	"xls": "spreadsheets", "xlsx": "spreadsheets", "ods": "spreadsheets",
	"csv": "spreadsheets",
	// presentations
	"ppt": "presentations", "pptx": "presentations", "odp": "presentations",
	// video
	"mp4": "video", "m4v": "video", "mov": "video", "avi": "video",
	"mkv": "video", "webm": "video", "wmv": "video", "mpg": "video",
	"mpeg": "video", "3gp": "video",
	// audio
	"mp3": "audio", "flac": "audio", "m4a": "audio", "wav": "audio",
	"aac": "audio", "ogg": "audio", "opus": "audio", "wma": "audio",
	// archives
	"zip": "archives", "tar": "archives", "gz": "archives",
	"7z": "archives", "rar": "archives",
}

// Subjects maps the distinct extensions present to subject tags through the
// fixed table. The result is sorted and duplicate-free; unmapped extensions
// are ignored.
func Subjects(exts []string) []string {
	seen := make(map[string]bool)
	for _, ext := range exts {
		if subj, ok := subjectTable[ext]; ok {
			seen[subj] = true
		}
	}

	subjects := make([]string, 0, len(seen))
	for subj := range seen {
		subjects = append(subjects, subj)
	}
	sort.Strings(subjects)
	return subjects
}
