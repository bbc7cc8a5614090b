package gradio

// sampleStream поток /queue/data, записанный с работающего Space
const sampleStream = `data: {"msg": "estimation", "event_id": "9f1c", "rank": 0, "queue_size": 1, "rank_eta": 1.2}

data: {"msg": "process_starts", "event_id": "9f1c", "eta": 1.2}

data: {"msg": "process_completed", "event_id": "9f1c", "output": {"data": ["1girl, solo", {"label": "general", "confidences": [{"label": "general", "confidence": 0.97}, {"label": "explicit", "confidence": 0.01}]}, {"label": "hatsune_miku", "confidences": [{"label": "hatsune_miku", "confidence": 0.91}]}, {"label": "1girl", "confidences": [{"label": "1girl", "confidence": 0.99}]}], "is_generating": false, "duration": 0.41, "average_duration": 0.52}, "success": true}

data: {"msg": "close_stream", "event_id": null}
`
