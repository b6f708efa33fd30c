package meta

import (
	"strings"
	"testing"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

func TestMap_EndToEndScenario(t *testing.T) {
	rec := domain.SourceRecord{
		"title":       "T",
		"uploader":    "U",
		"upload_date": "20200101",
		"duration":    125.4,
	}

	got := Map(rec)

	if got.Title != "T" {
		t.Fatalf("期望 title=T，实际=%q", got.Title)
	}
	if got.Artist != "U" || got.AlbumArtist != "U" {
		t.Fatalf("期望 artist/album_artist=U，实际=%q/%q", got.Artist, got.AlbumArtist)
	}
	if got.Album != "U - YouTube" {
		t.Fatalf("期望 album=%q，实际=%q", "U - YouTube", got.Album)
	}
	if got.Date != "2020-01-01" || got.Year != "2020" {
		t.Fatalf("期望 date=2020-01-01 year=2020，实际=%q/%q", got.Date, got.Year)
	}
	if got.DurationMS != "125400" {
		t.Fatalf("期望 duration_ms=125400，实际=%q", got.DurationMS)
	}
	if got.Genre != "Music" {
		t.Fatalf("期望 genre=Music，实际=%q", got.Genre)
	}
}

func TestMap_Placeholders(t *testing.T) {
	got := Map(domain.SourceRecord{})

	if got.Title != UnknownTitle {
		t.Fatalf("期望 title=%q，实际=%q", UnknownTitle, got.Title)
	}
	if got.Artist != UnknownArtist || got.AlbumArtist != UnknownArtist {
		t.Fatalf("期望 artist 占位值，实际=%q/%q", got.Artist, got.AlbumArtist)
	}
	// composer 允许为空：不回退占位值。
	if got.Composer != "" {
		t.Fatalf("期望 composer 为空，实际=%q", got.Composer)
	}
	if got.Album != UnknownArtist+" - YouTube" {
		t.Fatalf("期望合成 album，实际=%q", got.Album)
	}
	if got.Genre != DefaultGenre {
		t.Fatalf("期望 genre=%q，实际=%q", DefaultGenre, got.Genre)
	}
}

func TestMap_UploadDateAbsent(t *testing.T) {
	got := Map(domain.SourceRecord{"title": "x"})
	if got.Date != "" || got.Year != "" {
		t.Fatalf("upload_date 缺失时 date/year 必须保持未设置，实际=%q/%q", got.Date, got.Year)
	}
}

func TestMap_UploadDateMalformed(t *testing.T) {
	// 少于 4 字符：date 原样透传，year 不设置。
	got := Map(domain.SourceRecord{"upload_date": "bad"})
	if got.Date != "bad" || got.Year != "" {
		t.Fatalf("期望 date=bad year 未设置，实际=%q/%q", got.Date, got.Year)
	}

	// ≥4 字符但不可解析：year 取前 4 个字符。
	got = Map(domain.SourceRecord{"upload_date": "20xx9901"})
	if got.Date != "20xx9901" || got.Year != "20xx" {
		t.Fatalf("期望 date=20xx9901 year=20xx，实际=%q/%q", got.Date, got.Year)
	}

	// 8 位但不是合法日期（13 月）：同样走透传分支。
	got = Map(domain.SourceRecord{"upload_date": "20231315"})
	if got.Date != "20231315" || got.Year != "2023" {
		t.Fatalf("期望原样透传，实际=%q/%q", got.Date, got.Year)
	}
}

func TestMap_UploadDateValid(t *testing.T) {
	got := Map(domain.SourceRecord{"upload_date": "20230615"})
	if got.Date != "2023-06-15" || got.Year != "2023" {
		t.Fatalf("期望 2023-06-15/2023，实际=%q/%q", got.Date, got.Year)
	}
}

func TestMap_GenreSelection(t *testing.T) {
	// categories 优先于 tags，哪怕 tags 里有流派关键词。
	got := Map(domain.SourceRecord{
		"categories": []any{"Comedy"},
		"tags":       []any{"rock anthem"},
	})
	if got.Genre != "Comedy" {
		t.Fatalf("期望 genre=Comedy，实际=%q", got.Genre)
	}

	// 无 categories：取首个命中关键词的 tag（原文，不做小写化）。
	got = Map(domain.SourceRecord{
		"tags": []any{"funny", "rock anthem"},
	})
	if got.Genre != "rock anthem" {
		t.Fatalf("期望 genre=%q，实际=%q", "rock anthem", got.Genre)
	}

	// tags 全不命中：回退 Music。
	got = Map(domain.SourceRecord{
		"tags": []any{"funny", "cats"},
	})
	if got.Genre != DefaultGenre {
		t.Fatalf("期望 genre=%q，实际=%q", DefaultGenre, got.Genre)
	}
}

func TestMap_CommentTruncation(t *testing.T) {
	desc := strings.Repeat("a", 5000)
	got := Map(domain.SourceRecord{"description": desc})
	if len(got.Comment) != CommentLimit {
		t.Fatalf("期望截断到 %d 字符，实际 %d", CommentLimit, len(got.Comment))
	}
}

func TestMap_CommentStatsSuffix(t *testing.T) {
	got := Map(domain.SourceRecord{
		"description": "hello",
		"view_count":  float64(1234567),
		"like_count":  float64(8901),
	})
	want := "hello\n\n[Stats: Views: 1,234,567 | Likes: 8,901]"
	if got.Comment != want {
		t.Fatalf("期望 %q，实际 %q", want, got.Comment)
	}

	// 统计后缀允许把总长推过 3000 字符上限。
	got = Map(domain.SourceRecord{
		"description": strings.Repeat("a", 5000),
		"view_count":  float64(10),
	})
	if len(got.Comment) <= CommentLimit {
		t.Fatalf("期望统计后缀推过上限，实际长度 %d", len(got.Comment))
	}
	if !strings.HasSuffix(got.Comment, "[Stats: Views: 10]") {
		t.Fatalf("期望以统计块结尾，实际 %q", got.Comment[len(got.Comment)-40:])
	}

	// 只有 like_count：块里只出现 Likes。
	got = Map(domain.SourceRecord{"like_count": float64(5)})
	if got.Comment != "[Stats: Likes: 5]" {
		t.Fatalf("期望 %q，实际 %q", "[Stats: Likes: 5]", got.Comment)
	}
}

func TestMap_ThumbnailSelection(t *testing.T) {
	got := Map(domain.SourceRecord{
		"thumbnails": []any{
			map[string]any{"url": "http://t/small", "width": float64(120), "height": float64(90)},
			map[string]any{"url": "http://t/big", "width": float64(640), "height": float64(480)},
		},
	})
	if got.ThumbnailURL != "http://t/big" {
		t.Fatalf("期望选中最大面积候选，实际=%q", got.ThumbnailURL)
	}

	// source 预选的 thumbnail 优先于候选列表。
	got = Map(domain.SourceRecord{
		"thumbnail": "http://t/best",
		"thumbnails": []any{
			map[string]any{"url": "http://t/big", "width": float64(640), "height": float64(480)},
		},
	})
	if got.ThumbnailURL != "http://t/best" {
		t.Fatalf("期望预选 thumbnail 优先，实际=%q", got.ThumbnailURL)
	}

	// 两者都没有：保持未设置。
	got = Map(domain.SourceRecord{})
	if got.ThumbnailURL != "" {
		t.Fatalf("期望 thumbnail_url 未设置，实际=%q", got.ThumbnailURL)
	}
}

func TestMap_PlaylistAlbumAndTrackNumber(t *testing.T) {
	got := Map(domain.SourceRecord{
		"uploader":       "U",
		"playlist_title": "Best Of",
		"playlist_index": float64(7),
	})
	if got.Album != "Best Of" {
		t.Fatalf("期望 album=Best Of，实际=%q", got.Album)
	}
	if got.TrackNumber != "7" {
		t.Fatalf("期望 track_number=7，实际=%q", got.TrackNumber)
	}

	// 不在播放列表里：即使带 index 也不设置 track_number。
	got = Map(domain.SourceRecord{
		"uploader":       "U",
		"playlist_index": float64(7),
	})
	if got.TrackNumber != "" {
		t.Fatalf("非播放列表条目不应有 track_number，实际=%q", got.TrackNumber)
	}
}

func TestMap_SourceURLVerbatim(t *testing.T) {
	got := Map(domain.SourceRecord{"webpage_url": "https://www.youtube.com/watch?v=abc"})
	if got.SourceURL != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("期望 source_url 原样透传，实际=%q", got.SourceURL)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int64]string{
		0:          "0",
		5:          "5",
		999:        "999",
		1000:       "1,000",
		1234567:    "1,234,567",
		1000000000: "1,000,000,000",
	}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Fatalf("groupThousands(%d)：期望 %q，实际 %q", in, want, got)
		}
	}
}
