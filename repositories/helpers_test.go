package repositories

import "testing"

func TestRebind(t *testing.T) {
	t.Parallel()
	query := `SELECT a FROM t WHERE x = $1 AND y = $12 AND z = '$'`
	if got := dialectPostgres.rebind(query); got != query {
		t.Fatalf("postgres rebind changed the query: %s", got)
	}
	want := `SELECT a FROM t WHERE x = ? AND y = ? AND z = '$'`
	if got := dialectSQLite.rebind(query); got != want {
		t.Fatalf("sqlite rebind = %s, want %s", got, want)
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()
	tests := map[int]int{-1: HistoryLimit, 0: HistoryLimit, 1: 1, 20: 20, 50: 50, 51: HistoryLimit}
	for in, want := range tests {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
