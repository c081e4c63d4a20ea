package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/ggldnl/hexviz/config"
	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/telemetry"
	"github.com/ggldnl/hexviz/utils"
	"github.com/ggldnl/hexviz/viewer"
)

var hexapodPath = utils.ResolveFile("referenceframe/urdf/testdata/hexapod.urdf")

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"hexviz"}, args...))
	return out.String(), err
}

func TestInspect(t *testing.T) {
	out, err := runApp(t, "inspect", hexapodPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `robot "hexapod": 20 links, 19 joints, 18 movable`)
	test.That(t, out, test.ShouldContainSubstring, "leg_6_tibia")
	test.That(t, out, test.ShouldContainSubstring, "revolute")
	test.That(t, out, test.ShouldContainSubstring, "package://hexapod_description/meshes/tibia.stl")
	test.That(t, out, test.ShouldNotContainSubstring, "leg_1_coxa_link_shape")

	out, err = runApp(t, "inspect", "--tree", hexapodPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "world")
	test.That(t, out, test.ShouldContainSubstring, "leg_1_coxa_link")

	_, err = runApp(t, "inspect")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "requires a URDF file")

	_, err = runApp(t, "inspect", filepath.Join(t.TempDir(), "missing.urdf"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestServeBadConfig(t *testing.T) {
	_, err := runApp(t, "--config", filepath.Join(t.TempDir(), "missing.json"), "serve")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = runApp(t, "serve", "--connect", "robot.local:port")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid port")
}

func TestSplitHostPort(t *testing.T) {
	host, port, err := splitHostPort("192.168.1.7", 8765)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, host, test.ShouldEqual, "192.168.1.7")
	test.That(t, port, test.ShouldEqual, 8765)

	host, port, err = splitHostPort("hexapod.local:9000", 8765)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, host, test.ShouldEqual, "hexapod.local")
	test.That(t, port, test.ShouldEqual, 9000)

	host, _, err = splitHostPort("[::1]:9000", 8765)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, host, test.ShouldEqual, "::1")
}

func TestServe(t *testing.T) {
	cfg := config.Default()
	cfg.Description.File = hexapodPath
	listener, err := net.Listen("tcp", "localhost:0")
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- serve(ctx, cfg, listener, logging.NewTestLogger(t))
	}()

	url := "http://" + listener.Addr().String() + "/api/joints"
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		resp, err := http.Get(url)
		test.That(tb, err, test.ShouldBeNil)
		defer resp.Body.Close()
		test.That(tb, resp.StatusCode, test.ShouldEqual, http.StatusOK)
		var joints []viewer.JointState
		test.That(tb, json.NewDecoder(resp.Body).Decode(&joints), test.ShouldBeNil)
		test.That(tb, joints, test.ShouldHaveLength, 18)
	})

	cancel()
	test.That(t, <-served, test.ShouldBeNil)
}

func TestSimulate(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	test.That(t, err, test.ShouldBeNil)
	addr, ok := listener.Addr().(*net.TCPAddr)
	test.That(t, ok, test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- simulate(ctx, listener, 11, logging.NewBlankLogger("simulator"))
	}()

	received := make(chan *telemetry.Message, 16)
	mock := clock.NewMock()
	cfg := telemetry.ClientConfig{Address: addr.IP.String(), Port: addr.Port, UpdateRateHz: 10}
	client, err := telemetry.Dial(context.Background(), cfg, func(msg *telemetry.Message) {
		select {
		case received <- msg:
		default:
		}
	}, nil, mock, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mock.Add(cfg.Interval())
		test.That(tb, len(received), test.ShouldBeGreaterThan, 0)
	})
	msg := <-received
	test.That(t, msg.Joints, test.ShouldResemble, telemetry.StandingPose())
	test.That(t, client.Close(), test.ShouldBeNil)

	cancel()
	test.That(t, <-served, test.ShouldBeNil)
}
