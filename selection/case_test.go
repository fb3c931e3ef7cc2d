package selection

import "testing"

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"single word", "name", "name"},
		{"camel case", "originalPrice", "original_price"},
		{"camel case time field", "expiredTime", "expired_time"},
		{"trailing initialism", "categoryId", "category_id"},
		{"upper initialism", "CategoryID", "category_id"},
		{"all caps", "ID", "id"},
		{"initialism prefix", "HTTPServer", "http_server"},
		{"digit boundary", "userID2", "user_id_2"},
		{"already snake", "created_at", "created_at"},
		{"kebab input", "created-at", "created_at"},
		{"spaces", "created at", "created_at"},
		{"pascal case", "OrderItemCount", "order_item_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnakeCase(tt.input); got != tt.want {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
