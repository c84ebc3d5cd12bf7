package chain

// envelopeABI covers the read methods and events of the red envelope contract.
// Write methods are left out since the service never sends transactions.
const envelopeABI = `[
  {"type":"function","name":"getEnvelopeInfo","stateMutability":"view",
   "inputs":[{"name":"_envelopeId","type":"uint256"}],
   "outputs":[
     {"name":"creator","type":"address"},
     {"name":"totalAmount","type":"uint256"},
     {"name":"remainingAmount","type":"uint256"},
     {"name":"totalCount","type":"uint256"},
     {"name":"remainingCount","type":"uint256"},
     {"name":"isRandom","type":"bool"},
     {"name":"isActive","type":"bool"},
     {"name":"message","type":"string"},
     {"name":"createdAt","type":"uint256"},
     {"name":"expiresAt","type":"uint256"}]},
  {"type":"function","name":"getTotalEnvelopes","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"hasClaimed","stateMutability":"view",
   "inputs":[{"name":"_envelopeId","type":"uint256"},{"name":"_user","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"canClaim","stateMutability":"view",
   "inputs":[{"name":"_envelopeId","type":"uint256"},{"name":"_user","type":"address"}],
   "outputs":[{"name":"canClaim","type":"bool"},{"name":"reason","type":"string"}]},
  {"type":"function","name":"getClaimAmount","stateMutability":"view",
   "inputs":[{"name":"_envelopeId","type":"uint256"},{"name":"_user","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getClaimers","stateMutability":"view",
   "inputs":[{"name":"_envelopeId","type":"uint256"}],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"paused","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"owner","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"MAX_COUNT","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"MAX_MESSAGE_LENGTH","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"MIN_EXPIRY","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"MAX_EXPIRY","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"event","name":"EnvelopeCreated","anonymous":false,"inputs":[
     {"name":"envelopeId","type":"uint256","indexed":true},
     {"name":"creator","type":"address","indexed":true},
     {"name":"totalAmount","type":"uint256","indexed":false},
     {"name":"totalCount","type":"uint256","indexed":false},
     {"name":"isRandom","type":"bool","indexed":false},
     {"name":"message","type":"string","indexed":false},
     {"name":"expiresAt","type":"uint256","indexed":false}]},
  {"type":"event","name":"EnvelopeClaimed","anonymous":false,"inputs":[
     {"name":"envelopeId","type":"uint256","indexed":true},
     {"name":"claimer","type":"address","indexed":true},
     {"name":"amount","type":"uint256","indexed":false},
     {"name":"remainingCount","type":"uint256","indexed":false},
     {"name":"remainingAmount","type":"uint256","indexed":false}]},
  {"type":"event","name":"EnvelopeCompleted","anonymous":false,"inputs":[
     {"name":"envelopeId","type":"uint256","indexed":true},
     {"name":"creator","type":"address","indexed":true},
     {"name":"totalAmount","type":"uint256","indexed":false},
     {"name":"totalCount","type":"uint256","indexed":false}]},
  {"type":"event","name":"EnvelopeRefunded","anonymous":false,"inputs":[
     {"name":"envelopeId","type":"uint256","indexed":true},
     {"name":"creator","type":"address","indexed":true},
     {"name":"refundAmount","type":"uint256","indexed":false}]},
  {"type":"event","name":"EnvelopeExpired","anonymous":false,"inputs":[
     {"name":"envelopeId","type":"uint256","indexed":true},
     {"name":"refundAmount","type":"uint256","indexed":false}]}
]`
