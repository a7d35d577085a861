// Package benchmark cross-checks and benchmarks the decoder against
// google.golang.org/protobuf's dynamicpb, decoding the exact same wire
// bytes through both. The fixture schema is built directly as a
// descriptorpb.FileDescriptorProto (no protoc, no generated stubs) so the
// dynamicpb side needs nothing outside this module to run.
package benchmark

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/dstream-io/pbflow/decoder"
	"github.com/dstream-io/pbflow/def"
	"github.com/dstream-io/pbflow/handlers"
	"github.com/dstream-io/pbflow/sink"
	"github.com/dstream-io/pbflow/status"
)

// Global fixture state, set up once in init like the teacher's own
// benchmark harness did.
var (
	userMD    protoreflect.MessageDescriptor
	addressMD protoreflect.MessageDescriptor

	userDesc *def.MessageDescriptor
	userTbl  *handlers.Table

	payload []byte
)

func init() {
	setupDynamicDescriptors()
	setupPbflowSchema()
	payload = encodeFixtureUser()
}

func setupDynamicDescriptors() {
	t := func(dt descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type { return dt.Enum() }
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	fdProto := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("benchmark.proto"),
		Package: proto.String("benchmark"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Address"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto.String("city"), Number: proto.Int32(1), Type: t(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: optional},
					{Name: proto.String("country"), Number: proto.Int32(2), Type: t(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: optional},
				},
			},
			{
				Name: proto.String("User"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto.String("id"), Number: proto.Int32(1), Type: t(descriptorpb.FieldDescriptorProto_TYPE_INT32), Label: optional},
					{Name: proto.String("name"), Number: proto.Int32(2), Type: t(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: optional},
					{Name: proto.String("active"), Number: proto.Int32(3), Type: t(descriptorpb.FieldDescriptorProto_TYPE_BOOL), Label: optional},
					{Name: proto.String("tags"), Number: proto.Int32(4), Type: t(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: repeated},
					{Name: proto.String("scores"), Number: proto.Int32(5), Type: t(descriptorpb.FieldDescriptorProto_TYPE_INT32), Label: repeated},
					{Name: proto.String("address"), Number: proto.Int32(6), Type: t(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), TypeName: proto.String(".benchmark.Address"), Label: optional},
				},
			},
		},
	}

	file, err := protodesc.NewFile(fdProto, protoregistry.GlobalFiles)
	if err != nil {
		panic("benchmark: building file descriptor: " + err.Error())
	}
	userMD = file.Messages().ByName("User")
	addressMD = file.Messages().ByName("Address")
}

func setupPbflowSchema() {
	b := def.NewBuilder()
	addrMB, err := b.NewMessage("benchmark.Address")
	if err != nil {
		panic(err)
	}
	if _, err := addrMB.AddField(def.FieldSpec{Number: 1, Name: "city", Type: def.String}); err != nil {
		panic(err)
	}
	if _, err := addrMB.AddField(def.FieldSpec{Number: 2, Name: "country", Type: def.String}); err != nil {
		panic(err)
	}

	userMB, err := b.NewMessage("benchmark.User")
	if err != nil {
		panic(err)
	}
	if _, err := userMB.AddField(def.FieldSpec{Number: 1, Name: "id", Type: def.Int32}); err != nil {
		panic(err)
	}
	if _, err := userMB.AddField(def.FieldSpec{Number: 2, Name: "name", Type: def.String}); err != nil {
		panic(err)
	}
	if _, err := userMB.AddField(def.FieldSpec{Number: 3, Name: "active", Type: def.Bool}); err != nil {
		panic(err)
	}
	if _, err := userMB.AddField(def.FieldSpec{Number: 4, Name: "tags", Type: def.String, Label: def.Repeated}); err != nil {
		panic(err)
	}
	if _, err := userMB.AddField(def.FieldSpec{Number: 5, Name: "scores", Type: def.Int32, Label: def.Repeated}); err != nil {
		panic(err)
	}
	if _, err := userMB.AddField(def.FieldSpec{Number: 6, Name: "address", Type: def.Message, MessageType: "benchmark.Address"}); err != nil {
		panic(err)
	}

	descriptors, err := b.Freeze()
	if err != nil {
		panic(err)
	}
	userDesc = descriptors["benchmark.User"]
	userTbl = buildUserTable(userDesc)
}

func encodeFixtureUser() []byte {
	addr := dynamicpb.NewMessage(addressMD)
	addr.Set(addressMD.Fields().ByName("city"), protoreflect.ValueOfString("San Francisco"))
	addr.Set(addressMD.Fields().ByName("country"), protoreflect.ValueOfString("USA"))

	user := dynamicpb.NewMessage(userMD)
	user.Set(userMD.Fields().ByName("id"), protoreflect.ValueOfInt32(42))
	user.Set(userMD.Fields().ByName("name"), protoreflect.ValueOfString("Ada Lovelace"))
	user.Set(userMD.Fields().ByName("active"), protoreflect.ValueOfBool(true))
	user.Set(userMD.Fields().ByName("address"), protoreflect.ValueOfMessage(addr))

	tagsField := userMD.Fields().ByName("tags")
	tags := user.Mutable(tagsField).List()
	for _, tag := range []string{"engineer", "mathematician", "founder"} {
		tags.Append(protoreflect.ValueOfString(tag))
	}

	scoresField := userMD.Fields().ByName("scores")
	scores := user.Mutable(scoresField).List()
	for _, score := range []int32{98, 87, 100, 76} {
		scores.Append(protoreflect.ValueOfInt32(score))
	}

	bytes, err := proto.Marshal(user)
	if err != nil {
		panic("benchmark: marshaling fixture: " + err.Error())
	}
	return bytes
}

// decodedAddress/decodedUser are the plain Go structs pbflow's handler
// table fills in; they mirror the fixture schema field-for-field.
type decodedAddress struct {
	City, Country string
}

type decodedUser struct {
	ID            int32
	Name          string
	Active        bool
	Tags          []string
	Scores        []int32
	Address       decodedAddress
}

func buildUserTable(msg *def.MessageDescriptor) *handlers.Table {
	addressMsg := msg.FieldByName("address").Message
	addressTbl := handlers.NewTable(addressMsg)
	addressTbl.SetStringChunk(addressMsg.FieldByName("city"), func(c handlers.Closure, chunk []byte) status.Code {
		c.(*decodedUser).Address.City += string(chunk)
		return status.OK
	})
	addressTbl.SetStringChunk(addressMsg.FieldByName("country"), func(c handlers.Closure, chunk []byte) status.Code {
		c.(*decodedUser).Address.Country += string(chunk)
		return status.OK
	})

	table := handlers.NewTable(msg)
	table.SetValue(msg.FieldByName("id"), func(c handlers.Closure, v interface{}) status.Code {
		c.(*decodedUser).ID = v.(int32)
		return status.OK
	})
	nameField := msg.FieldByName("name")
	table.SetStringChunk(nameField, func(c handlers.Closure, chunk []byte) status.Code {
		c.(*decodedUser).Name += string(chunk)
		return status.OK
	})
	table.SetValue(msg.FieldByName("active"), func(c handlers.Closure, v interface{}) status.Code {
		c.(*decodedUser).Active = v.(bool)
		return status.OK
	})
	tagsField := msg.FieldByName("tags")
	table.SetStringChunk(tagsField, func(c handlers.Closure, chunk []byte) status.Code {
		u := c.(*decodedUser)
		u.Tags[len(u.Tags)-1] += string(chunk)
		return status.OK
	})
	table.SetStartString(tagsField, func(c handlers.Closure, sizeHint uint64) (handlers.Closure, status.Code) {
		u := c.(*decodedUser)
		u.Tags = append(u.Tags, "")
		return c, status.OK
	})
	scoresField := msg.FieldByName("scores")
	table.SetValue(scoresField, func(c handlers.Closure, v interface{}) status.Code {
		u := c.(*decodedUser)
		u.Scores = append(u.Scores, v.(int32))
		return status.OK
	})
	table.SetStartSubMessage(msg.FieldByName("address"), func(c handlers.Closure) (handlers.Closure, status.Code) {
		return c, status.OK
	})
	table.SetSubHandlers(msg.FieldByName("address"), addressTbl)

	return table
}

func decodeWithPbflow(data []byte, chunkSize int) (*decodedUser, error) {
	u := &decodedUser{}
	s := sink.New()
	d := decoder.New(decoder.NewOptions(), s)
	if code := d.Reset(userTbl, u); code != status.OK {
		return nil, s.Err()
	}
	if chunkSize <= 0 {
		chunkSize = len(data) + 1
	}
	for off := 0; off < len(data); {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		n, err := d.Feed(data[off:end])
		if err != nil {
			return nil, err
		}
		off += n
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return u, nil
}

func TestPbflowMatchesDynamicPB(t *testing.T) {
	got, err := decodeWithPbflow(payload, 0)
	if err != nil {
		t.Fatalf("pbflow decode: %v", err)
	}

	check := dynamicpb.NewMessage(userMD)
	if err := proto.Unmarshal(payload, check); err != nil {
		t.Fatalf("dynamicpb decode: %v", err)
	}

	if got.ID != int32(check.Get(userMD.Fields().ByName("id")).Int()) {
		t.Errorf("id: got %d", got.ID)
	}
	if got.Name != check.Get(userMD.Fields().ByName("name")).String() {
		t.Errorf("name: got %q, dynamicpb %q", got.Name, check.Get(userMD.Fields().ByName("name")).String())
	}
	if got.Active != check.Get(userMD.Fields().ByName("active")).Bool() {
		t.Errorf("active: got %v", got.Active)
	}

	wantTags := check.Get(userMD.Fields().ByName("tags")).List()
	if len(got.Tags) != wantTags.Len() {
		t.Fatalf("tags: got %v, want len %d", got.Tags, wantTags.Len())
	}
	for i, tag := range got.Tags {
		if tag != wantTags.Get(i).String() {
			t.Errorf("tags[%d]: got %q, want %q", i, tag, wantTags.Get(i).String())
		}
	}

	wantScores := check.Get(userMD.Fields().ByName("scores")).List()
	if len(got.Scores) != wantScores.Len() {
		t.Fatalf("scores: got %v, want len %d", got.Scores, wantScores.Len())
	}
	for i, score := range got.Scores {
		if score != int32(wantScores.Get(i).Int()) {
			t.Errorf("scores[%d]: got %d, want %d", i, score, wantScores.Get(i).Int())
		}
	}

	wantAddress := check.Get(userMD.Fields().ByName("address")).Message()
	if got.Address.City != wantAddress.Get(addressMD.Fields().ByName("city")).String() {
		t.Errorf("address.city: got %q", got.Address.City)
	}
	if got.Address.Country != wantAddress.Get(addressMD.Fields().ByName("country")).String() {
		t.Errorf("address.country: got %q", got.Address.Country)
	}
}

func BenchmarkDecodePbflowWhole(b *testing.B) {
	b.ReportMetric(float64(len(payload)), "payload_bytes")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := decodeWithPbflow(payload, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodePbflowFragmented(b *testing.B) {
	b.ReportMetric(float64(len(payload)), "payload_bytes")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := decodeWithPbflow(payload, 7); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeDynamicPB(b *testing.B) {
	b.ReportMetric(float64(len(payload)), "payload_bytes")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		msg := dynamicpb.NewMessage(userMD)
		if err := proto.Unmarshal(payload, msg); err != nil {
			b.Fatal(err)
		}
	}
}
