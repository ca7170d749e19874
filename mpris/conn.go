package mpris

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	dbusName       = "org.freedesktop.DBus"
	dbusPath       = "/org/freedesktop/DBus"
	listNames      = "org.freedesktop.DBus.ListNames"
	propertiesGet  = "org.freedesktop.DBus.Properties.Get"
	busNamePrefix  = "org.mpris.MediaPlayer2."
	playerPath     = "/org/mpris/MediaPlayer2"
	playerIface    = "org.mpris.MediaPlayer2.Player"
	instanceMarker = ".instance"
)

// Caller makes a single method call on a D-Bus object and returns the reply
// body. It exists so the manager can be exercised without a session bus.
type Caller interface {
	Call(ctx context.Context, dest string, path dbus.ObjectPath, method string, args ...any) ([]any, error)
}

type busCaller struct {
	conn *dbus.Conn
}

func (b busCaller) Call(ctx context.Context, dest string, path dbus.ObjectPath, method string, args ...any) ([]any, error) {
	call := b.conn.Object(dest, path).CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return nil, call.Err
	}
	return call.Body, nil
}

func getProperty(ctx context.Context, c Caller, dest, property string) (dbus.Variant, error) {
	body, err := c.Call(ctx, dest, playerPath, propertiesGet, playerIface, property)
	if err != nil {
		return dbus.Variant{}, err
	}
	if len(body) == 0 || body[0] == nil {
		return dbus.Variant{}, nil
	}
	v, ok := body[0].(dbus.Variant)
	if !ok {
		return dbus.MakeVariant(body[0]), nil
	}
	return v, nil
}
