// Package adapter holds the pieces every external adapter shares: the single
// error kind surfaced to callers, the success and errored envelopes written back
// to the node, and the callback helpers that guarantee one response per job run.
//
// Typical flow
//
//	in, err := validation.Validate(raw, spec)
//	if err != nil {
//		adapter.ErrorCallback(jobRunID(raw), err, cb)
//		return
//	}
//	resp, err := client.Get(ctx, &httpclient.Request{URL: url})
//	if err != nil {
//		adapter.ErrorCallback(in.ID, err, cb)
//		return
//	}
//	n, err := payload.ExtractNumber(resp, payload.P("price"))
//	if err != nil {
//		adapter.ErrorCallback(in.ID, err, cb)
//		return
//	}
//	adapter.Respond(in.ID, resp.WithResult(n), nil, cb)
package adapter
