// Command pbdump decodes one protobuf-encoded message read from stdin
// against a schema loaded from .proto sources, printing one structured log
// line per decoder event. It exists to exercise decoder/handlers/sink from
// the command line, including resumability: stdin is fed through in
// caller-chosen chunk sizes rather than read whole.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"

	"github.com/dstream-io/pbflow/decoder"
	"github.com/dstream-io/pbflow/def"
	"github.com/dstream-io/pbflow/handlers"
	"github.com/dstream-io/pbflow/registry"
	"github.com/dstream-io/pbflow/sink"
	"github.com/dstream-io/pbflow/status"
)

type dirList []string

func (d *dirList) String() string { return strings.Join(*d, ",") }

func (d *dirList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			*d = append(*d, part)
		}
	}
	return nil
}

func main() {
	var dirs dirList
	entry := flag.String("entry", "", "entry .proto file to load (searched under -dir)")
	messageName := flag.String("message", "", "fully qualified (or unambiguous short) message name to decode as")
	chunkSize := flag.Int("chunk", 4096, "maximum bytes fed to the decoder per Feed call")
	flag.Var(&dirs, "dir", "proto search directory (repeatable, or comma-separated)")
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if *entry == "" || *messageName == "" {
		fmt.Fprintln(os.Stderr, "usage: pbdump -dir <proto-dir> -entry <file.proto> -message <Type> < input.bin")
		os.Exit(2)
	}
	if len(dirs) == 0 {
		dirs = append(dirs, ".")
	}

	if err := run(logger, []string(dirs), *entry, *messageName, *chunkSize); err != nil {
		logger.Log("event", "fatal", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, dirs []string, entry, messageName string, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = 4096
	}

	reg := registry.NewRegistry(dirs...)
	if _, err := reg.LoadSchema(entry); err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	msg, err := reg.GetMessage(messageName)
	if err != nil {
		return fmt.Errorf("resolving message %q: %w", messageName, err)
	}
	logger.Log("event", "schema_loaded", "message", msg.Name, "fields", len(msg.Fields))

	table := buildTraceTable(msg, logger, make(map[string]*handlers.Table))

	s := sink.New()
	d := decoder.New(decoder.NewOptions(), s)
	if code := d.Reset(table, nil); code != status.OK {
		return fmt.Errorf("decoder reset: %s", code)
	}

	reader := bufio.NewReaderSize(os.Stdin, chunkSize)
	buf := make([]byte, chunkSize)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			data := buf[:n]
			for len(data) > 0 {
				consumed, feedErr := d.Feed(data)
				if feedErr != nil {
					return fmt.Errorf("decode: %w", feedErr)
				}
				if consumed == 0 {
					break
				}
				data = data[consumed:]
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading stdin: %w", readErr)
		}
	}

	if err := d.Finish(); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	logger.Log("event", "done")
	return nil
}

// buildTraceTable builds a handler table that logs every event the decoder
// dispatches for msg, recursing into sub-message fields. cache memoizes one
// table per message name so self-referencing (and mutually recursive)
// schemas terminate.
func buildTraceTable(msg *def.MessageDescriptor, logger log.Logger, cache map[string]*handlers.Table) *handlers.Table {
	if t, ok := cache[msg.Name]; ok {
		return t
	}
	table := handlers.NewTable(msg)
	cache[msg.Name] = table

	table.SetStartMessage(func(c handlers.Closure) (handlers.Closure, status.Code) {
		logger.Log("event", "start_message", "type", msg.Name)
		return c, status.OK
	})
	table.SetEndMessage(func(c handlers.Closure) status.Code {
		logger.Log("event", "end_message", "type", msg.Name)
		return status.OK
	})

	for _, fd := range msg.Fields {
		fd := fd
		shape := fd.Shape()
		repeated := shape == def.ShapePrimitiveRepeated || shape == def.ShapeStringRepeated || shape == def.ShapeSubMessageRepeated
		if repeated {
			table.SetStartSequence(fd, func(c handlers.Closure) (handlers.Closure, status.Code) {
				logger.Log("event", "start_sequence", "field", fd.Name)
				return c, status.OK
			})
			table.SetEndSequence(fd, func(c handlers.Closure) status.Code {
				logger.Log("event", "end_sequence", "field", fd.Name)
				return status.OK
			})
		}

		switch shape {
		case def.ShapePrimitiveScalar, def.ShapePrimitiveRepeated:
			table.SetValue(fd, func(c handlers.Closure, v interface{}) status.Code {
				logger.Log("event", "value", "field", fd.Name, "value", fmt.Sprintf("%v", v))
				return status.OK
			})
		case def.ShapeStringScalar, def.ShapeStringRepeated:
			table.SetStartString(fd, func(c handlers.Closure, sizeHint uint64) (handlers.Closure, status.Code) {
				logger.Log("event", "start_string", "field", fd.Name, "size_hint", sizeHint)
				return c, status.OK
			})
			table.SetStringChunk(fd, func(c handlers.Closure, chunk []byte) status.Code {
				logger.Log("event", "string_chunk", "field", fd.Name, "bytes", len(chunk))
				return status.OK
			})
			table.SetEndString(fd, func(c handlers.Closure) status.Code {
				logger.Log("event", "end_string", "field", fd.Name)
				return status.OK
			})
		case def.ShapeSubMessageScalar, def.ShapeSubMessageRepeated:
			table.SetStartSubMessage(fd, func(c handlers.Closure) (handlers.Closure, status.Code) {
				logger.Log("event", "start_submessage", "field", fd.Name)
				return c, status.OK
			})
			table.SetEndSubMessage(fd, func(c handlers.Closure) status.Code {
				logger.Log("event", "end_submessage", "field", fd.Name)
				return status.OK
			})
			table.SetSubHandlers(fd, buildTraceTable(fd.Message, logger, cache))
		}
	}

	return table
}
