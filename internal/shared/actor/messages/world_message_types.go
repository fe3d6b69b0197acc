package messages

// WHReply 是世界 actor 的统一应答，Payload 的具体类型由请求决定。
type WHReply struct {
	Payload any
	Err     error
}

func Ok(payload any) *WHReply {
	return &WHReply{Payload: payload}
}

func Fail(err error) *WHReply {
	return &WHReply{Err: err}
}
