package wire

import "time"

// Data is the reduced Data representation spec.md §3 requires: Name,
// content bytes, freshness period, signature.
type Data struct {
	NameV            Name
	ContentV         []byte
	FreshnessPeriodV time.Duration
	SignatureV       *Signature
}

// Name returns the Data's name.
func (d *Data) Name() Name { return d.NameV }

// Content returns the Data's content bytes.
func (d *Data) Content() []byte { return d.ContentV }

// SetContent sets the Data's content bytes.
func (d *Data) SetContent(b []byte) { d.ContentV = b }

// SetFreshnessPeriod sets the Data's freshness period.
func (d *Data) SetFreshnessPeriod(fp time.Duration) { d.FreshnessPeriodV = fp }

// Encode serializes the Data to its TLV wire form. The signature, if set,
// is carried as a SignatureInfo component (type + key name) and a
// SignatureValue component, mirroring the split basic_router.cpp reads back
// out of a registration Interest's trailing name components.
func (d *Data) Encode() []byte {
	nameBytes := d.NameV.Bytes()

	freshMs := uint64(d.FreshnessPeriodV / time.Millisecond)
	freshBytes := encodeNat(freshMs)
	metaInner := TypeFreshnessPeriod.EncodingLength() + TLNum(len(freshBytes)).EncodingLength() + len(freshBytes)
	metaBytes := make([]byte, TypeMetaInfo.EncodingLength()+TLNum(metaInner).EncodingLength()+metaInner)
	mp := TypeMetaInfo.EncodeInto(metaBytes)
	mp += TLNum(metaInner).EncodeInto(metaBytes[mp:])
	mp += TypeFreshnessPeriod.EncodeInto(metaBytes[mp:])
	mp += TLNum(len(freshBytes)).EncodeInto(metaBytes[mp:])
	copy(metaBytes[mp:], freshBytes)

	contentInner := len(d.ContentV)
	contentBytes := make([]byte, TypeContent.EncodingLength()+TLNum(contentInner).EncodingLength()+contentInner)
	cp := TypeContent.EncodeInto(contentBytes)
	cp += TLNum(contentInner).EncodeInto(contentBytes[cp:])
	copy(contentBytes[cp:], d.ContentV)

	var sigInfoBytes, sigValBytes []byte
	if d.SignatureV != nil {
		info := d.SignatureV.EncodeInfoComponent()
		sigInfoBytes = make([]byte, TypeSignatureInfo.EncodingLength()+TLNum(len(info)).EncodingLength()+len(info))
		sp := TypeSignatureInfo.EncodeInto(sigInfoBytes)
		sp += TLNum(len(info)).EncodeInto(sigInfoBytes[sp:])
		copy(sigInfoBytes[sp:], info)

		val := d.SignatureV.Value
		sigValBytes = make([]byte, TypeSignatureValue.EncodingLength()+TLNum(len(val)).EncodingLength()+len(val))
		vp := TypeSignatureValue.EncodeInto(sigValBytes)
		vp += TLNum(len(val)).EncodeInto(sigValBytes[vp:])
		copy(sigValBytes[vp:], val)
	}

	inner := len(nameBytes) + len(metaBytes) + len(contentBytes) + len(sigInfoBytes) + len(sigValBytes)
	buf := make([]byte, TypeData.EncodingLength()+TLNum(inner).EncodingLength()+inner)
	p := TypeData.EncodeInto(buf)
	p += TLNum(inner).EncodeInto(buf[p:])
	p += copy(buf[p:], nameBytes)
	p += copy(buf[p:], metaBytes)
	p += copy(buf[p:], contentBytes)
	p += copy(buf[p:], sigInfoBytes)
	copy(buf[p:], sigValBytes)

	return buf
}

// DecodeData parses a complete Data TLV block from buf.
func DecodeData(buf []byte) (*Data, error) {
	typ, p1, ok := ParseTLNum(buf)
	if !ok || typ != TypeData {
		return nil, ErrMalformed
	}
	l, p2, ok := ParseTLNum(buf[p1:])
	if !ok {
		return nil, ErrMalformed
	}
	start := p1 + p2
	end := start + int(l)
	if end > len(buf) {
		return nil, ErrMalformed
	}
	body := buf[start:end]

	name, consumed, ok := ParseNameBlock(body)
	if !ok {
		return nil, ErrMalformed
	}
	body = body[consumed:]

	d := &Data{NameV: name}
	for len(body) > 0 {
		ftyp, fp1, ok := ParseTLNum(body)
		if !ok {
			return nil, ErrMalformed
		}
		fl, fp2, ok := ParseTLNum(body[fp1:])
		if !ok {
			return nil, ErrMalformed
		}
		fstart := fp1 + fp2
		fend := fstart + int(fl)
		if fend > len(body) {
			return nil, ErrMalformed
		}
		val := body[fstart:fend]
		switch ftyp {
		case TypeMetaInfo:
			if ftyp2, fp1b, ok := ParseTLNum(val); ok && ftyp2 == TypeFreshnessPeriod {
				_, fp2b, ok := ParseTLNum(val[fp1b:])
				if ok {
					fStart := fp1b + fp2b
					if ms, _, ok := parseNat(val[fStart:]); ok {
						d.FreshnessPeriodV = time.Duration(ms) * time.Millisecond
					}
				}
			}
		case TypeContent:
			d.ContentV = val
		case TypeSignatureInfo:
			sigType, keyName, ok := DecodeInfoComponent(val)
			if ok {
				if d.SignatureV == nil {
					d.SignatureV = &Signature{}
				}
				d.SignatureV.Type = sigType
				d.SignatureV.KeyName = keyName
			}
		case TypeSignatureValue:
			if d.SignatureV == nil {
				d.SignatureV = &Signature{}
			}
			d.SignatureV.Value = val
		}
		body = body[fend:]
	}
	return d, nil
}
