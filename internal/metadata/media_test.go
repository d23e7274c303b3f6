package metadata

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Andres9890/iadrive/pkg/types"
)

// TestParseTagDate는 테스트 코드 동작을 검증하거나 보조합니다.
func TestParseTagDate(t *testing.T) {
	// 연도만 있는 값과 전체 날짜 값이 모두 파싱되어야 한다.
	cases := []struct {
		in   string
		want time.Time
	}{
		{"1999", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)},
		{" 2001 ", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2019-11-03", time.Date(2019, 11, 3, 0, 0, 0, 0, time.UTC)},
		{"2019-11-03T10:30:00Z", time.Date(2019, 11, 3, 10, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := parseTagDate(tc.in)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("unexpected date for %q: want=%v got=%v", tc.in, tc.want, got)
		}
	}

	if _, err := parseTagDate("notadate"); err == nil {
		t.Fatal("expected error for garbage date")
	}
	if _, err := parseTagDate("0000"); err == nil {
		t.Fatal("expected error for year zero")
	}
}

// TestPrintableKey는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPrintableKey(t *testing.T) {
	// MP4 atom 이름의 저작권 기호 접두사를 제거해야 한다.
	if got := printableKey("\xa9day"); got != "day" {
		t.Fatalf("expected day, got %q", got)
	}
	if got := printableKey("TDRC"); got != "TDRC" {
		t.Fatalf("expected TDRC, got %q", got)
	}
}

// TestMediaReader_Extract_ReturnsErrorWhenSourceMissing는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_ReturnsErrorWhenSourceMissing(t *testing.T) {
	// 파일 오픈 자체가 실패하면 에러 메시지를 반환해야 한다.
	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{
		Path:    "/path/does/not/exist.mp3",
		RelPath: "missing.mp3",
		Ext:     "mp3",
	})

	if ed.Err == "" {
		t.Fatal("expected error for missing source file")
	}
}

// TestMediaReader_Extract_NoTagsInPlainFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_NoTagsInPlainFile(t *testing.T) {
	// 태그가 전혀 없는 파일은 no creation date 에러 경로를 타야 한다.
	filePath := filepath.Join(t.TempDir(), "plain.mp3")
	if err := os.WriteFile(filePath, []byte("not really an mp3 file"), 0644); err != nil {
		t.Fatalf("failed to write plain file: %v", err)
	}

	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{Path: filePath, RelPath: "plain.mp3", Ext: "mp3"})

	if ed.Err != "no creation date in media tags" {
		t.Fatalf("unexpected error: %s", ed.Err)
	}
}

// TestMediaReader_Extract_ReadsID3RecordingTime는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_ReadsID3RecordingTime(t *testing.T) {
	// ID3v2.4 TDRC 프레임의 녹음 시각이 읽혀야 한다.
	filePath := filepath.Join(t.TempDir(), "track.mp3")
	writeMP3WithID3Frame(t, filePath, "TDRC", "2019-11-03")

	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{Path: filePath, RelPath: "track.mp3", Ext: "mp3"})

	if ed.Time == nil {
		t.Fatalf("expected embedded date, got error: %s", ed.Err)
	}
	if ed.Source != "tag:TDRC" {
		t.Fatalf("expected tag:TDRC, got %s", ed.Source)
	}

	want := time.Date(2019, 11, 3, 0, 0, 0, 0, time.UTC)
	if !ed.Time.Equal(want) {
		t.Fatalf("unexpected date: want=%v got=%v", want, *ed.Time)
	}
}

// TestMediaReader_Extract_YearOnlyTagValue는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_YearOnlyTagValue(t *testing.T) {
	// 연도만 담긴 태그 값은 1월 1일로 해석되어야 한다.
	filePath := filepath.Join(t.TempDir(), "year.mp3")
	writeMP3WithID3Frame(t, filePath, "TDRC", "1999")

	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{Path: filePath, RelPath: "year.mp3", Ext: "mp3"})

	if ed.Time == nil {
		t.Fatalf("expected embedded date, got error: %s", ed.Err)
	}
	if ed.Source != "tag:TDRC" {
		t.Fatalf("expected tag:TDRC, got %s", ed.Source)
	}

	want := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	if !ed.Time.Equal(want) {
		t.Fatalf("unexpected date: want=%v got=%v", want, *ed.Time)
	}
}

// TestMediaReader_Extract_ReadsMovieHeaderCreationTime는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_ReadsMovieHeaderCreationTime(t *testing.T) {
	// 태그 atom이 없는 MP4는 moov/mvhd 생성 시각으로 폴백해야 한다.
	want := time.Date(2019, 11, 3, 10, 30, 0, 0, time.UTC)
	filePath := filepath.Join(t.TempDir(), "clip.mp4")
	writeMP4WithMovieHeader(t, filePath, want)

	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{Path: filePath, RelPath: "clip.mp4", Ext: "mp4"})

	if ed.Time == nil {
		t.Fatalf("expected embedded date, got error: %s", ed.Err)
	}
	if ed.Source != "mvhd:creation_time" {
		t.Fatalf("expected mvhd:creation_time, got %s", ed.Source)
	}
	if !ed.Time.Equal(want) {
		t.Fatalf("unexpected date: want=%v got=%v", want, *ed.Time)
	}
}

// TestMediaReader_Extract_IgnoresZeroMovieHeaderTime는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_IgnoresZeroMovieHeaderTime(t *testing.T) {
	// mvhd 생성 시각이 0이면 기록되지 않은 것이므로 무시해야 한다.
	filePath := filepath.Join(t.TempDir(), "zero.mp4")
	writeMP4WithMovieHeader(t, filePath, qtEpoch)

	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{Path: filePath, RelPath: "zero.mp4", Ext: "mp4"})

	if ed.Err != "no creation date in media tags" {
		t.Fatalf("unexpected error: %s", ed.Err)
	}
}

// TestMediaReader_Extract_JunkContainer는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMediaReader_Extract_JunkContainer(t *testing.T) {
	// 컨테이너 확장자라도 박스 구조가 아니면 소프트 실패해야 한다.
	filePath := filepath.Join(t.TempDir(), "junk.mp4")
	if err := os.WriteFile(filePath, []byte("not really an mp4 container"), 0644); err != nil {
		t.Fatalf("failed to write junk file: %v", err)
	}

	reader := NewMediaReader()
	ed := reader.Extract(types.FileRecord{Path: filePath, RelPath: "junk.mp4", Ext: "mp4"})

	if ed.Err != "no creation date in media tags" {
		t.Fatalf("unexpected error: %s", ed.Err)
	}
}

// writeMP3WithID3Frame는 테스트 코드 동작을 검증하거나 보조합니다.
func writeMP3WithID3Frame(t *testing.T, path, frameID, value string) {
	t.Helper()

	// ID3v2.4 텍스트 프레임: 인코딩 바이트(UTF-8) + 본문.
	payload := append([]byte{0x03}, []byte(value)...)
	frame := make([]byte, 0, 10+len(payload))
	frame = append(frame, []byte(frameID)...)
	frame = appendSyncsafe(frame, uint32(len(payload)))
	frame = append(frame, 0x00, 0x00) // frame flags
	frame = append(frame, payload...)

	header := []byte{'I', 'D', '3', 0x04, 0x00, 0x00}
	header = appendSyncsafe(header, uint32(len(frame)))

	if err := os.WriteFile(path, append(header, frame...), 0644); err != nil {
		t.Fatalf("failed to write id3 fixture: %v", err)
	}
}

// writeMP4WithMovieHeader는 테스트 코드 동작을 검증하거나 보조합니다.
func writeMP4WithMovieHeader(t *testing.T, path string, creation time.Time) {
	t.Helper()

	secs := uint32(creation.Sub(qtEpoch) / time.Second)

	// mvhd version 0: 8바이트 박스 헤더 + 100바이트 페이로드.
	mvhd := make([]byte, 0, 108)
	mvhd = appendUint32(mvhd, 108)
	mvhd = append(mvhd, []byte("mvhd")...)
	mvhd = append(mvhd, 0x00, 0x00, 0x00, 0x00) // version + flags
	mvhd = appendUint32(mvhd, secs)             // creation_time
	mvhd = appendUint32(mvhd, secs)             // modification_time
	mvhd = appendUint32(mvhd, 1000)             // timescale
	mvhd = appendUint32(mvhd, 0)                // duration
	mvhd = appendUint32(mvhd, 0x00010000)       // rate 1.0
	mvhd = append(mvhd, 0x01, 0x00)             // volume 1.0
	mvhd = append(mvhd, make([]byte, 10)...)    // reserved
	for _, v := range []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000} {
		mvhd = appendUint32(mvhd, v) // unity matrix
	}
	mvhd = append(mvhd, make([]byte, 24)...) // pre_defined
	mvhd = appendUint32(mvhd, 2)             // next_track_ID

	moov := make([]byte, 0, 8+len(mvhd))
	moov = appendUint32(moov, uint32(8+len(mvhd)))
	moov = append(moov, []byte("moov")...)
	moov = append(moov, mvhd...)

	if err := os.WriteFile(path, moov, 0644); err != nil {
		t.Fatalf("failed to write mp4 fixture: %v", err)
	}
}

// appendUint32는 테스트 코드 동작을 검증하거나 보조합니다.
func appendUint32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

// appendSyncsafe는 테스트 코드 동작을 검증하거나 보조합니다.
func appendSyncsafe(b []byte, v uint32) []byte {
	return append(b, byte(v>>21&0x7F), byte(v>>14&0x7F), byte(v>>7&0x7F), byte(v&0x7F))
}
