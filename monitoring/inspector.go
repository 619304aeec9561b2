// Package monitoring serves an HTTP inspector over a codec: it lists the
// registered types, round trips documents, dumps decoded Go values and
// reports the resources of the process.
package monitoring

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/propjson/diagnostics"
	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"
)

// DefaultHistorySize is the number of diagnostics /api/diagnostics keeps.
const DefaultHistorySize = 1000

// Inspector turns a codec into a server that can be queried over HTTP.
type Inspector struct {
	codec      *serialization.Codec
	history    *diagnostics.Collector
	request    *diagnostics.Collector
	logger     *zap.Logger
	portNumber int

	// Serializes codec calls so that request only holds the diagnostics of
	// the request being served.
	lock sync.Mutex
}

// NewInspector creates an Inspector over the types of registry.
func NewInspector(
	registry *serialization.Registry,
	logger *zap.Logger,
) *Inspector {
	return newInspector(registry, logger, DefaultHistorySize)
}

func newInspector(
	registry *serialization.Registry,
	logger *zap.Logger,
	historySize int,
) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}

	i := &Inspector{
		history: diagnostics.NewBoundedCollector(historySize),
		request: diagnostics.NewCollector(),
		logger:  logger,
	}

	i.codec = serialization.MakeBuilder().
		WithRegistry(registry).
		WithLogger(logger).
		WithHook(i.history).
		WithHook(i.request).
		Build()

	return i
}

// WithPortNumber sets the port number of the inspector.
func (i *Inspector) WithPortNumber(portNumber int) *Inspector {
	if portNumber != 0 && portNumber < 1000 {
		i.logger.Warn("port number below 1000 is not allowed, "+
			"using a random port instead", zap.Int("port", portNumber))
		portNumber = 0
	}

	i.portNumber = portNumber

	return i
}

// Codec returns the codec the inspector drives.
func (i *Inspector) Codec() *serialization.Codec {
	return i.codec
}

// Router returns the routes of the inspector.
func (i *Inspector) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/types", i.listTypes).Methods(http.MethodGet)
	r.HandleFunc("/api/type/{name}", i.describeType).Methods(http.MethodGet)
	r.HandleFunc("/api/stringifiers", i.listStringifiers).
		Methods(http.MethodGet)
	r.HandleFunc("/api/roundtrip/{name}", i.roundTrip).
		Methods(http.MethodPost)
	r.HandleFunc("/api/inspect/{name}", i.inspect).Methods(http.MethodPost)
	r.HandleFunc("/api/diagnostics", i.listDiagnostics).
		Methods(http.MethodGet)
	r.HandleFunc("/api/resource", i.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", i.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the URL it
// listens on.
func (i *Inspector) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(i.portNumber))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	i.logger.Info("inspector started", zap.String("url", url))

	go func() {
		err := http.Serve(listener, i.Router())
		if err != nil {
			i.logger.Error("inspector stopped", zap.Error(err))
		}
	}()

	return url, nil
}

type propertyRsp struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Readable  bool   `json:"readable"`
	Writable  bool   `json:"writable"`
	Converter string `json:"converter,omitempty"`
	Identity  bool   `json:"identity,omitempty"`
}

type typeRsp struct {
	Name       string        `json:"name"`
	Semantics  string        `json:"semantics"`
	Properties []propertyRsp `json:"properties,omitempty"`
}

func typeRspOf(desc property.TypeDescriptor, withProps bool) typeRsp {
	rsp := typeRsp{Name: desc.Name, Semantics: desc.Semantics.String()}
	if !withProps {
		return rsp
	}

	for _, p := range desc.Properties {
		rsp.Properties = append(rsp.Properties, propertyRsp{
			Name:      p.Name,
			Type:      p.Type,
			Readable:  p.Readable,
			Writable:  p.Writable,
			Converter: p.Converter,
			Identity:  p.Identity,
		})
	}

	return rsp
}

func (i *Inspector) listTypes(w http.ResponseWriter, _ *http.Request) {
	registry := i.codec.Registry()
	rsp := []typeRsp{}

	for _, name := range registry.TypeNames() {
		desc, _ := registry.Descriptor(name)
		rsp = append(rsp, typeRspOf(desc, false))
	}

	i.writeJSON(w, http.StatusOK, rsp)
}

func (i *Inspector) describeType(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	desc, ok := i.codec.Registry().Descriptor(name)
	if !ok {
		i.writeError(w, http.StatusNotFound, "type %s is not registered", name)
		return
	}

	i.writeJSON(w, http.StatusOK, typeRspOf(desc, true))
}

func (i *Inspector) listStringifiers(w http.ResponseWriter, _ *http.Request) {
	i.writeJSON(w, http.StatusOK, i.codec.Registry().StringifierKeys())
}

type diagnosticRsp struct {
	Kind     string `json:"kind"`
	Type     string `json:"type"`
	Property string `json:"property"`
	Message  string `json:"message"`
}

func diagnosticsRsp(ds []serialization.Diagnostic) []diagnosticRsp {
	rsp := make([]diagnosticRsp, 0, len(ds))
	for _, d := range ds {
		rsp = append(rsp, diagnosticRsp{
			Kind:     d.Kind.String(),
			Type:     d.Type,
			Property: d.Property,
			Message:  d.Message,
		})
	}

	return rsp
}

type roundTripRsp struct {
	Output      jsontext.Value  `json:"output"`
	Diagnostics []diagnosticRsp `json:"diagnostics"`
}

// decode deserializes the request body. It writes the error response itself
// when decoding fails. i.lock must be held.
func (i *Inspector) decode(
	w http.ResponseWriter,
	r *http.Request,
) (property.Object, bool) {
	name := mux.Vars(r)["name"]

	if _, ok := i.codec.Registry().ResolveType(name); !ok {
		i.writeError(w, http.StatusNotFound, "type %s is not registered", name)
		return nil, false
	}

	i.request.Reset()

	obj, err := i.codec.Decode(r.Body, name)
	if err != nil {
		i.writeError(w, http.StatusBadRequest, "%v", err)
		return nil, false
	}

	return obj, true
}

func (i *Inspector) roundTrip(w http.ResponseWriter, r *http.Request) {
	i.lock.Lock()
	defer i.lock.Unlock()

	obj, ok := i.decode(w, r)
	if !ok {
		return
	}

	out, err := i.codec.Marshal(obj)
	if err != nil {
		i.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	i.writeJSON(w, http.StatusOK, roundTripRsp{
		Output:      jsontext.Value(out),
		Diagnostics: diagnosticsRsp(i.request.Diagnostics()),
	})
}

// inspect decodes the body and dumps the resulting Go value. The optional
// field parameter selects a dotted path into the value and depth limits how
// deep the dump goes.
func (i *Inspector) inspect(w http.ResponseWriter, r *http.Request) {
	i.lock.Lock()
	defer i.lock.Unlock()

	obj, ok := i.decode(w, r)
	if !ok {
		return
	}

	depth := 1
	if d := r.URL.Query().Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			i.writeError(w, http.StatusBadRequest, "invalid depth %q", d)
			return
		}

		depth = n
	}

	var root any = obj
	if u, ok := obj.(property.Unwrapper); ok {
		root = u.Unwrap()
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(root)
	serializer.SetMaxDepth(depth)

	if field := r.URL.Query().Get("field"); field != "" {
		err := serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			i.writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
	}

	buf := &bytes.Buffer{}
	if err := serializer.Serialize(buf); err != nil {
		i.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	i.write(w, buf)
}

func (i *Inspector) listDiagnostics(w http.ResponseWriter, _ *http.Request) {
	i.writeJSON(w, http.StatusOK, diagnosticsRsp(i.history.Diagnostics()))
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (i *Inspector) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		i.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		i.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		i.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	i.writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (i *Inspector) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second
	if s := r.URL.Query().Get("seconds"); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n < 0 {
			i.writeError(w, http.StatusBadRequest, "invalid seconds %q", s)
			return
		}

		duration = time.Duration(n * float64(time.Second))
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		i.writeError(w, http.StatusConflict, "%v", err)
		return
	}

	time.Sleep(duration)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		i.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	i.writeJSON(w, http.StatusOK, prof)
}

func (i *Inspector) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, v); err != nil {
		i.logger.Error("write response", zap.Error(err))
	}
}

type errorRsp struct {
	Error string `json:"error"`
}

func (i *Inspector) writeError(
	w http.ResponseWriter,
	status int,
	format string,
	args ...any,
) {
	i.writeJSON(w, status, errorRsp{Error: fmt.Sprintf(format, args...)})
}

func (i *Inspector) write(w io.Writer, r io.Reader) {
	if _, err := io.Copy(w, r); err != nil {
		i.logger.Error("write response", zap.Error(err))
	}
}
