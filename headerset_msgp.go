package smtpsubmit

import "github.com/tinylib/msgp/msgp"

// MarshalMsg and UnmarshalMsg are written by hand in the shape `msgp
// generate` produces for headerSetSnapshot; there is no `go generate` step
// in this module, so the generator was not run.

func (z *headerSetSnapshot) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.AppendMapHeader(b, 1)
	o = msgp.AppendString(o, "fields")
	o = msgp.AppendArrayHeader(o, uint32(len(z.Fields)))
	for _, f := range z.Fields {
		o = msgp.AppendMapHeader(o, 2)
		o = msgp.AppendString(o, "name")
		o = msgp.AppendString(o, f.Name)
		o = msgp.AppendString(o, "value")
		o = msgp.AppendString(o, f.Value)
	}
	return o, nil
}

func (z *headerSetSnapshot) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var mapSize uint32
	mapSize, bts, err = msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	for i := uint32(0); i < mapSize; i++ {
		var key string
		key, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, err
		}
		if key != "fields" {
			bts, err = msgp.Skip(bts)
			if err != nil {
				return bts, err
			}
			continue
		}

		var arrSize uint32
		arrSize, bts, err = msgp.ReadArrayHeaderBytes(bts)
		if err != nil {
			return bts, err
		}
		z.Fields = make([]headerField, arrSize)
		for j := range z.Fields {
			var fieldMapSize uint32
			fieldMapSize, bts, err = msgp.ReadMapHeaderBytes(bts)
			if err != nil {
				return bts, err
			}
			for k := uint32(0); k < fieldMapSize; k++ {
				var fk string
				fk, bts, err = msgp.ReadStringBytes(bts)
				if err != nil {
					return bts, err
				}
				var v string
				v, bts, err = msgp.ReadStringBytes(bts)
				if err != nil {
					return bts, err
				}
				switch fk {
				case "name":
					z.Fields[j].Name = v
				case "value":
					z.Fields[j].Value = v
				}
			}
		}
	}
	return bts, nil
}

// ToMessagePack marshals the header set snapshot to MessagePack.
func (h *MapHeaderSet) ToMessagePack() ([]byte, error) {
	snap := h.Snapshot()
	return snap.MarshalMsg(nil)
}

// FromMessagePack replaces h's fields with those decoded from data.
func (h *MapHeaderSet) FromMessagePack(data []byte) error {
	var snap headerSetSnapshot
	_, err := snap.UnmarshalMsg(data)
	if err != nil {
		return err
	}
	h.fields = snap.Fields
	return nil
}
