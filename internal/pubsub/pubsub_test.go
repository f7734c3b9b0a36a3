package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curaious/taskdesk/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	ev := RevocationEvent{JTI: "0b6f4c1e", Until: time.Unix(1793000000, 0)}

	got, err := parsePayload(ev.payload())
	require.NoError(t, err)
	assert.Equal(t, ev.JTI, got.JTI)
	assert.True(t, ev.Until.Equal(got.Until))
}

func TestParsePayload_Invalid(t *testing.T) {
	for _, raw := range []string{"", "no-separator", ":123", "abc:soon"} {
		_, err := parsePayload(raw)
		assert.Error(t, err, raw)
	}
}

func TestPublish(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	ps := NewPubSub(&config.Config{}, sqlx.NewDb(conn, "postgres"))
	mock.ExpectExec(`SELECT pg_notify\(\$1, \$2\)`).
		WithArgs(Channel, "abc:1793000000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ps.Publish(context.Background(), RevocationEvent{JTI: "abc", Until: time.Unix(1793000000, 0)}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatch(t *testing.T) {
	ps := NewPubSub(&config.Config{}, nil)
	var got []string
	ps.Subscribe(func(ev RevocationEvent) { got = append(got, ev.JTI) })
	ps.Subscribe(func(ev RevocationEvent) { got = append(got, "again:"+ev.JTI) })

	ps.dispatch("abc:1793000000")
	ps.dispatch("garbage")

	assert.Equal(t, []string{"abc", "again:abc"}, got)
}
