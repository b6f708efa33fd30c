package vidurl

import "testing"

func TestCanonical(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "无查询串原样返回",
			in:   "https://www.youtube.com/watch",
			want: "https://www.youtube.com/watch",
		},
		{
			name: "提取 v 参数并丢弃其余参数",
			in:   "https://www.youtube.com/watch?v=abc123&list=PLx&t=42",
			want: "https://www.youtube.com/watch?v=abc123",
		},
		{
			name: "v 参数不在首位也能提取",
			in:   "https://www.youtube.com/watch?list=PLx&v=abc123",
			want: "https://www.youtube.com/watch?v=abc123",
		},
		{
			name: "youtu.be 短链只保留 base",
			in:   "https://youtu.be/abc123?si=xyz",
			want: "https://youtu.be/abc123",
		},
		{
			name: "v= 只出现在值内部时不改动",
			in:   "https://example.com/page?q=v=weird",
			want: "https://example.com/page?q=v=weird",
		},
		{
			name: "首尾空白被裁剪",
			in:   "  https://youtu.be/abc123  ",
			want: "https://youtu.be/abc123",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonical(tc.in); got != tc.want {
				t.Fatalf("期望 %q，实际 %q", tc.want, got)
			}
		})
	}
}
